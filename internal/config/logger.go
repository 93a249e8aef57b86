package config

import (
	"io"
	"log/slog"

	"github.com/mesh-intelligence/activities/pkg/types"
)

// NewLogger builds the logger described by cfg. Unknown or empty levels fall
// back to info and unknown formats to text. It does not touch slog's default
// logger.
func NewLogger(cfg types.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
