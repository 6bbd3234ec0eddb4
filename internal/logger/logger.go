// Package logger builds the process-wide slog logger and defines the small
// logging interface components depend on.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the logging capability injected into components.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config selects level and output format
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// New creates a slog logger writing to stderr
func New(cfg Config) *slog.Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter creates a slog logger writing to w
func NewWithWriter(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Nop returns a logger that discards everything
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name to slog.Level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
