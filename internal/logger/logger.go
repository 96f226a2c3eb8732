// Package logger wraps zap and provides level-configurable structured logging
// for the server.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger holds the underlying zap logger.
type Logger struct {
	// Log is the configured zap logger. Before Init it is a no-op logger.
	Log *zap.Logger
}

// New returns a Logger backed by a no-op zap logger.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds a production zap logger at the given level ("Debug", "Info",
// "Warn", "Error") and replaces the no-op logger.
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	log, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	l.Log = log
	return nil
}
