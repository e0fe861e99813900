// Package logger provides structured logging configuration for the service.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatJSON outputs logs in JSON format (production default)
	FormatJSON Format = "json"
	// FormatText outputs logs in human-readable text format
	FormatText Format = "text"
)

// New creates a structured logger with the given level and format.
//
// Level options: debug, info, warn, error (default: info).
// Format options: json, text (default: json).
func New(level, format string) *slog.Logger {
	lvl := parseLevel(level)

	opts := &slog.HandlerOptions{
		Level: lvl,
		// source locations are skipped only at error-only verbosity
		AddSource: lvl <= slog.LevelWarn,
	}

	var handler slog.Handler
	switch Format(strings.ToLower(format)) {
	case FormatText:
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
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
