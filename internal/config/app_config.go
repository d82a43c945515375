package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// DataDir is the root data directory. Defaults to ~/.mailbatch.
	DataDir string `envconfig:"MAILBATCH_DATA_DIR"`

	// ConfigFile is the mail configuration file. A sibling "<name>.user.yaml"
	// takes precedence when it exists.
	ConfigFile string `envconfig:"MAILBATCH_CONFIG" default:"mailbatch.yaml"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// LogToFile writes JSON logs to LogDir instead of text logs to stderr.
	LogToFile bool `envconfig:"MAILBATCH_LOG_TO_FILE" default:"false"`
}

// Load reads AppConfig from environment variables using envconfig.
// DataDir defaults to ~/.mailbatch if not set.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".mailbatch")
	}
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogDir returns the path to the log directory (~/.mailbatch/logs).
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DatabasePath returns the path to the recipient directory database.
func (c *AppConfig) DatabasePath() string {
	return filepath.Join(c.DataDir, "mailbatch.db")
}
