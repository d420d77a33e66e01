// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package logging provides the structured key/value logger used by the
// loader, exporter and CLI. The map view core never logs; every failure
// there is returned to the caller.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects log level and output format.
type Config struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// DefaultConfig returns info-level text logging.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text"}
}

// Logger wraps slog with the message-plus-pairs call shape used throughout
// the codebase.
type Logger struct {
	sl *slog.Logger
}

// New creates a logger writing to stderr.
func New(cfg Config) *Logger {
	return NewWithOutput(os.Stderr, cfg)
}

// NewWithOutput creates a logger writing to w.
func NewWithOutput(w io.Writer, cfg Config) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &Logger{sl: slog.New(h)}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a logger that includes the given key/value pairs on every
// record.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{sl: l.sl.With(kv...)}
}

func (l *Logger) Debug(msg string, kv ...any) { l.sl.Debug(msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.sl.Info(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.sl.Warn(msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.sl.Error(msg, kv...) }
