// tasksd serves the tasks REST API from a SQLite store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/dori/tasks/internal/app"
	"github.com/dori/tasks/internal/config"
	"github.com/dori/tasks/internal/logging"
	"github.com/dori/tasks/internal/server"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	v := config.NewViper()
	var configPath string

	cmd := &cobra.Command{
		Use:     "tasksd",
		Short:   "Serve the tasks API",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			return serve(cfg.Server)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "config file (default "+config.DefaultConfigPath()+")")
	flags.String("addr", "", "listen address")
	flags.String("data-dir", "", "directory holding the database")
	flags.Bool("seed", true, "create a sample task when the store is empty")
	flags.Bool("debug", false, "log debug records")

	_ = v.BindPFlag("server.addr", flags.Lookup("addr"))
	_ = v.BindPFlag("server.data_dir", flags.Lookup("data-dir"))
	_ = v.BindPFlag("server.seed", flags.Lookup("seed"))
	_ = v.BindPFlag("server.debug", flags.Lookup("debug"))

	return cmd
}

func serve(cfg config.ServerConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(os.Stderr, cfg.Debug)

	application, err := app.New(ctx, app.NewConfig(cfg.DataDir, cfg.Seed), logger)
	if err != nil {
		return err
	}
	defer application.Close()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(application.DB, logger)
	logger.Info("starting tasksd", "version", version, "data_dir", application.DataDir)
	if err := srv.Run(ctx, cfg.Addr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	logger.Info("shut down")
	return nil
}
