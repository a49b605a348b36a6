// Package cli implements the tasks command line: the TUI plus scriptable
// subcommands against the tasks API.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dori/tasks/internal/api"
	"github.com/dori/tasks/internal/config"
	"github.com/dori/tasks/internal/logging"
	"github.com/dori/tasks/internal/tasklist"
	"github.com/dori/tasks/internal/ui"
	"github.com/dori/tasks/internal/ui/theme"
)

// cli holds state shared by every command of one invocation
type cli struct {
	version    string
	v          *viper.Viper
	configPath string

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	client    *api.Client
}

// Execute runs the root command
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root, c := newRootCmd(version)
	defer c.close()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func newRootCmd(version string) (*cobra.Command, *cli) {
	c := &cli{
		version: version,
		v:       config.NewViper(),
	}

	root := &cobra.Command{
		Use:   "tasks",
		Short: "A task list backed by the tasks API",
		Long: `tasks keeps a task list in sync with a tasks server.

Run without arguments to open the terminal UI, or use a subcommand to
script it.`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: c.setup,
		RunE:              c.runTUI,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultConfigPath()+")")
	flags.String("api-url", "", "tasks server URL")
	flags.String("log-file", "", "diagnostic log file")
	flags.Bool("debug", false, "log debug records")

	// Lookup cannot fail for flags defined just above.
	_ = c.v.BindPFlag("client.api_url", flags.Lookup("api-url"))
	_ = c.v.BindPFlag("client.log_file", flags.Lookup("log-file"))
	_ = c.v.BindPFlag("client.debug", flags.Lookup("debug"))

	root.AddCommand(
		c.lsCmd(),
		c.addCmd(),
		c.editCmd(),
		c.rmCmd(),
		c.commentsCmd(),
		c.commentCmd(),
		c.versionCmd(),
	)

	return root, c
}

// setup loads config and opens the log and API client
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.v, c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger, closer, err := logging.OpenFile(cfg.Client.LogFile, cfg.Client.Debug)
	if err != nil {
		return err
	}
	c.logger = logger
	c.logCloser = closer

	client, err := api.New(cfg.Client.APIURL, api.WithLogger(logger))
	if err != nil {
		return err
	}
	c.client = client

	logger.Debug("command started", "cmd", cmd.CommandPath(), "api_url", cfg.Client.APIURL)
	return nil
}

func (c *cli) close() {
	if c.logCloser != nil {
		c.logCloser.Close()
		c.logCloser = nil
	}
}

// controller starts a session over the API client
func (c *cli) controller() *tasklist.Controller {
	return tasklist.New(c.client, c.logger)
}

func (c *cli) runTUI(cmd *cobra.Command, args []string) error {
	if t, ok := theme.ByName(c.cfg.Client.Theme); ok {
		theme.SetTheme(t)
	} else {
		c.logger.Warn("unknown theme", "theme", c.cfg.Client.Theme)
	}

	ctrl := c.controller()
	defer ctrl.Close()

	p := tea.NewProgram(
		ui.New(cmd.Context(), ctrl),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)

	_, err := p.Run()
	return err
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Printing the version needs no config or server.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tasks %s\n", c.version)
		},
	}
}
