// Package logging sets up the process-wide structured logger. Grounded on
// the teacher's internal/debug package (a single process-wide toggle
// configured once from main and read everywhere else), generalized from
// its bespoke writer-based toggle to log/slog's level-based handler since
// no third-party structured-logging library appears anywhere in the
// example pack.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

const envVar = "PROBE_LOG"

// Init configures the default slog logger's level from PROBE_LOG
// (debug|info|warn|error, default warn per spec.md §6) and returns it.
func Init() *slog.Logger {
	level := levelFromEnv(os.Getenv(envVar))
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func levelFromEnv(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
