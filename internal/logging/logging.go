// Package logging provides structured logging for Adapter Studio.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/adapter-studio/adapter-studio/internal/config"
)

// NewFromSettings creates a slog.Logger per the user's settings, writing
// to stderr so it never mixes with command output on stdout.
func NewFromSettings(s *config.Settings) *slog.Logger {
	return slog.New(newHandler(s.Logging.Format, os.Stderr, parseLevel(s.Logging.Level)))
}

// NewDefault creates a default text logger writing to stderr.
func NewDefault() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// NewForTest creates a silent logger for tests.
func NewForTest() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// parseLevel converts a settings log level to slog.Level.
func parseLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelInfo:
		return slog.LevelInfo
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newHandler creates a slog.Handler based on format.
func newHandler(format config.LogFormat, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	switch format {
	case config.LogFormatJSON:
		return slog.NewJSONHandler(w, opts)
	default:
		return slog.NewTextHandler(w, opts)
	}
}
