package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meteoaustral/goes-frames/internal/config"
)

func TestNewLogger(t *testing.T) {
	ctx := context.Background()

	t.Run("default level is info", func(t *testing.T) {
		logger := NewLogger(&config.Config{LogLevel: "info", LogFormat: "json"})

		assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
		assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
	})

	t.Run("debug level", func(t *testing.T) {
		logger := NewLogger(&config.Config{LogLevel: "debug", LogFormat: "text"})

		assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
	})

	t.Run("error level", func(t *testing.T) {
		logger := NewLogger(&config.Config{LogLevel: "error", LogFormat: "text"})

		assert.False(t, logger.Enabled(ctx, slog.LevelWarn))
		assert.True(t, logger.Enabled(ctx, slog.LevelError))
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		logger := NewLogger(&config.Config{LogLevel: "verbose", LogFormat: "text"})

		assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
		assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
	})
}
