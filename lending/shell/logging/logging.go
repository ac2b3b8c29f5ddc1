// Package logging builds the slog.Logger of lendingd from its logger configuration.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/library-lending/lending-ledger/lending/shell/config"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

// New creates a *slog.Logger writing to w. An empty format selects JSON in production and text otherwise.
func New(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Logger.Level)}

	var handler slog.Handler
	if Format(cfg) == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With("service", "lendingd", "env", cfg.App.Environment)
}

// Format resolves the effective log format.
func Format(cfg *config.Config) string {
	if cfg.Logger.Format != "" {
		return cfg.Logger.Format
	}

	if cfg.IsProduction() {
		return FormatJSON
	}

	return FormatText
}

// ParseLevel maps debug, info, warn and error to slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
