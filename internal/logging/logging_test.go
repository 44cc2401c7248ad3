package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromEnv_KnownValues(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, levelFromEnv("debug"))
	assert.Equal(t, slog.LevelInfo, levelFromEnv("INFO"))
	assert.Equal(t, slog.LevelWarn, levelFromEnv("warn"))
	assert.Equal(t, slog.LevelError, levelFromEnv("error"))
}

func TestLevelFromEnv_UnknownDefaultsToWarn(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, levelFromEnv(""))
	assert.Equal(t, slog.LevelWarn, levelFromEnv("verbose"))
}
