// Package config loads client and server settings from a YAML file and
// TASKS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "tasks"

	// ConfigFile is the config filename inside the config directory.
	ConfigFile = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. TASKS_CLIENT_API_URL.
	EnvPrefix = "TASKS"
)

// Config holds all settings.
type Config struct {
	Client ClientConfig `mapstructure:"client"`
	Server ServerConfig `mapstructure:"server"`
}

// ClientConfig configures the tasks client.
type ClientConfig struct {
	// APIURL is the server root; routes live under /api.
	APIURL string `mapstructure:"api_url"`

	// LogFile receives diagnostics. The TUI owns the terminal, so logs never go to stderr.
	LogFile string `mapstructure:"log_file"`

	Debug bool   `mapstructure:"debug"`
	Theme string `mapstructure:"theme"`
}

// ServerConfig configures tasksd.
type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	DataDir string `mapstructure:"data_dir"`

	// Seed creates a sample task in an empty store.
	Seed bool `mapstructure:"seed"`

	Debug bool `mapstructure:"debug"`
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), ConfigFile)
}

// DefaultStateDir returns the directory for logs.
// Uses XDG_STATE_HOME if set, otherwise $HOME/.local/state.
func DefaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(home, ".local", "state", AppName)
}

// DefaultDataDir returns the server data directory.
// Uses XDG_DATA_HOME if set, otherwise $HOME/.local/share.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// NewViper returns a viper instance with defaults and env bindings set.
// Callers may bind flags on it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("client.api_url", "http://127.0.0.1:5000")
	v.SetDefault("client.log_file", filepath.Join(DefaultStateDir(), "tasks.log"))
	v.SetDefault("client.debug", false)
	v.SetDefault("client.theme", "nord")

	v.SetDefault("server.addr", "127.0.0.1:5000")
	v.SetDefault("server.data_dir", DefaultDataDir())
	v.SetDefault("server.seed", true)
	v.SetDefault("server.debug", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads path into v and decodes the result. An empty path means the
// default location, which may be missing; an explicit path must exist.
func Load(v *viper.Viper, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}
