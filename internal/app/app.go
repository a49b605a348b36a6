// Package app wires the tasksd backend: data directory, lock and store.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/multierr"

	"github.com/dori/tasks/internal/store"
)

// App holds the backend state and dependencies
type App struct {
	DB       *store.DB
	DataDir  string
	logger   *slog.Logger
	lockFile *flock.Flock
}

// Config holds backend configuration
type Config struct {
	DataDir string
	DBPath  string

	// Seed creates the sample task when the store is empty
	Seed bool
}

// NewConfig returns a configuration rooted at dataDir
func NewConfig(dataDir string, seed bool) *Config {
	return &Config{
		DataDir: dataDir,
		DBPath:  filepath.Join(dataDir, "tasks.db"),
		Seed:    seed,
	}
}

// New creates a backend instance. Only one instance may use a data
// directory at a time.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		DataDir: cfg.DataDir,
		logger:  logger,
	}

	if err := app.acquireLock(); err != nil {
		return nil, err
	}

	logger.Info("opening database", "path", cfg.DBPath)
	database, err := store.Open(cfg.DBPath)
	if err != nil {
		app.releaseLock()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database

	if cfg.Seed {
		created, err := database.SeedSampleTask(ctx)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
		if created {
			logger.Info("created sample task", "title", store.SampleTaskTitle)
		}
	}

	return app, nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.DataDir, "tasksd.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another tasksd is already using %s", a.DataDir)
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() error {
	if a.lockFile == nil {
		return nil
	}
	return a.lockFile.Unlock()
}

// Close cleans up backend resources
func (a *App) Close() error {
	var err error

	if a.DB != nil {
		if cerr := a.DB.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to close database: %w", cerr))
		}
	}

	if lerr := a.releaseLock(); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("failed to release lock: %w", lerr))
	}

	return err
}
