package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/wordstream-bot/internal/config"
)

// NewLogger creates a *slog.Logger based on the provided LogConfig
// and sets it as the default logger via slog.SetDefault.
//
// Format "json" produces structured JSON output (production).
// Format "text" produces human-readable output with source info (development).
// Level is one of: debug, info, warn, error (case-insensitive); defaults to info.
// Output is os.Stderr, plus cfg.File (append mode) when configured.
// The returned close func releases the log file and is never nil.
func NewLogger(cfg config.LogConfig) (*slog.Logger, func() error, error) {
	var (
		w       io.Writer = os.Stderr
		closeFn           = func() error { return nil }
	)

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closeFn, fmt.Errorf("open log file %s: %w", cfg.File, err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closeFn = f.Close
	}

	logger := slog.New(newHandler(w, cfg))
	slog.SetDefault(logger)

	return logger, closeFn, nil
}

func newHandler(w io.Writer, cfg config.LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
