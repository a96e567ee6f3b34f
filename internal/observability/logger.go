package observability

import (
	"log/slog"
	"os"
)

// LoggerConfig is the subset of service configuration the logger needs.
type LoggerConfig interface {
	LoggerLevel() string
	LoggerFormat() string
}

// NewLogger builds a slog.Logger from the configured level and format
// ("json" or "text"). Unknown levels fall back to info.
func NewLogger(cfg LoggerConfig) *slog.Logger {
	var level slog.Level
	switch cfg.LoggerLevel() {
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
	if cfg.LoggerFormat() == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
