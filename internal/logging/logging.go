package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init creates and sets the process-wide default slog logger on stderr.
// When stdoutCarriesResults is true it uses JSON, so log lines cannot be
// mistaken for result records; otherwise text for human readability.
func Init(stdoutCarriesResults bool, level slog.Level) *slog.Logger {
	logger := New(os.Stderr, stdoutCarriesResults, level)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w in JSON or text form.
func New(w io.Writer, json bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
