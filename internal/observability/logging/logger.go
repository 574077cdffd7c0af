// Package logging provides structured logging helpers on top of log/slog.
package logging

import (
	"log/slog"
	"os"
)

// NewLogger creates a structured logger with JSON output, or text output when
// LOG_FORMAT=text. The log level is controlled via the LOG_LEVEL environment
// variable (debug enables debug logging; anything else means info).
func NewLogger() *slog.Logger {
	if os.Getenv("LOG_FORMAT") == "text" {
		return NewTextLogger()
	}

	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel <= slog.LevelWarn,
	})
	return slog.New(handler)
}

// NewTextLogger creates a logger with human-readable text output for local
// development.
func NewTextLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	return slog.New(handler)
}
