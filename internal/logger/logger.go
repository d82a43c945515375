// Package logger builds the slog loggers used by the CLI.
//
// File logs are JSON and rotated by size:
//
//	<logDir>/mailbatch.log          current log
//	<logDir>/mailbatch-<ts>.log.gz  rotated backups
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileName = "mailbatch.log"
	maxSizeMB   = 20
	maxBackups  = 5
	maxAgeDays  = 30
	logDirPerm  = 0750
)

// NewFileLogger creates a JSON slog.Logger that writes to <logDir>/mailbatch.log
// with size-based rotation. The directory is created if it does not exist.
// The returned io.Closer closes the underlying file.
func NewFileLogger(logDir string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, logDirPerm); err != nil {
		return nil, nil, fmt.Errorf("creating log directory %q: %w", logDir, err)
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, logFileName),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), w, nil
}

// NewConsoleLogger creates a human-readable text logger writing to w.
func NewConsoleLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
