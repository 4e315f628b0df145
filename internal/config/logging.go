package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// parseLevel parses a level name. An empty name is info.
func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// SlogLevel returns the configured slog level, info when unset or unknown.
func (l Logging) SlogLevel() slog.Level {
	lvl, _ := parseLevel(l.Level)
	return lvl
}

// NewLogger builds a logger writing to w, or stderr when w is nil.
func (l Logging) NewLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
