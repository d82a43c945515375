package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/mailbatch/internal/config"
	"github.com/shaharia-lab/mailbatch/internal/logger"
	"github.com/shaharia-lab/mailbatch/internal/storage"
)

// appEnv is what every command needs before doing real work.
type appEnv struct {
	cfg        *config.AppConfig
	configFile string
	logger     *slog.Logger
	logCloser  io.Closer
}

// Close flushes the log file, if any.
func (e *appEnv) Close() {
	if e.logCloser != nil {
		_ = e.logCloser.Close()
	}
}

// setupEnv loads .env, the environment config and the logger. Flags win over
// environment variables.
func setupEnv(cmd *cobra.Command) (*appEnv, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}

	env := &appEnv{cfg: cfg, configFile: cfg.ConfigFile}
	if cmd.Flags().Changed("config") {
		env.configFile, _ = cmd.Flags().GetString("config")
	}

	if cfg.LogToFile {
		l, closer, err := logger.NewFileLogger(cfg.LogDir(), cfg.SlogLevel())
		if err != nil {
			return nil, err
		}
		env.logger, env.logCloser = l, closer
	} else {
		env.logger = logger.NewConsoleLogger(os.Stderr, cfg.SlogLevel())
	}
	return env, nil
}

// openDirectory opens the recipient directory, migrating it if needed.
func (e *appEnv) openDirectory(ctx context.Context) (*sql.DB, *storage.SQLiteRecipientStore, error) {
	db, err := storage.NewSQLiteDB(ctx, e.cfg.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening recipient directory: %w", err)
	}
	return db, storage.NewSQLiteRecipientStore(db), nil
}
