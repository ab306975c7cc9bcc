package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardhq/steward/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Run("creates JSON logger by default", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		require.NotNil(t, log)
		log.Info("hello")
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("text format option", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithFormat(logger.FormatText),
		)
		log.Info("hello")
		assert.Contains(t, buf.String(), "INFO")
		assert.Contains(t, buf.String(), "hello")
	})

	t.Run("invalid format panics", func(t *testing.T) {
		assert.Panics(t, func() {
			logger.New(logger.WithFormat(logger.Format("yaml")))
		})
	})

	t.Run("respects level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithLevel(slog.LevelWarn),
		)
		log.Info("dropped")
		log.Warn("kept")
		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("includes static attributes", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithAttr(slog.String("component", "tenantdb")),
		)
		log.Info("msg")
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "tenantdb", entry["component"])
	})

	t.Run("extracts attributes from context", func(t *testing.T) {
		buf := &bytes.Buffer{}
		type key string
		ctxKey := key("tenant")
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
				if v := ctx.Value(ctxKey); v != nil {
					return slog.String("tenant_id", v.(string)), true
				}
				return slog.Attr{}, false
			}),
		)

		ctx := context.WithValue(context.Background(), ctxKey, "acme")
		log.InfoContext(ctx, "resolved")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "acme", entry["tenant_id"])
	})

	t.Run("extractor absent value adds nothing", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
				return slog.Attr{}, false
			}),
		)
		log.InfoContext(context.Background(), "no tenant")
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		_, ok := entry["tenant_id"]
		assert.False(t, ok)
	})

	t.Run("production preset", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithProduction("steward"),
			logger.WithOutput(buf),
		)
		log.Debug("dropped")
		log.Info("kept")
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "steward", entry["service"])
		assert.Equal(t, "production", entry["env"])
		assert.Equal(t, "kept", entry["msg"])
	})

	t.Run("development preset uses text and debug", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithDevelopment("steward"),
			logger.WithOutput(buf),
		)
		log.Debug("visible")
		assert.Contains(t, buf.String(), "visible")
		assert.Contains(t, buf.String(), "env=development")
	})

	t.Run("environment preset dispatch", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithEnvironment("prod", "steward"),
			logger.WithOutput(buf),
		)
		log.Info("msg")
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "production", entry["env"])
	})
}
