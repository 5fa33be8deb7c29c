package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-123")
		assert.Equal(t, "req-123", RequestIDFromContext(ctx))
	})

	t.Run("missing returns empty", func(t *testing.T) {
		assert.Equal(t, "", RequestIDFromContext(context.Background()))
	})

	t.Run("wrong type returns empty", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), requestIDKey, 42)
		assert.Equal(t, "", RequestIDFromContext(ctx))
	})
}

func TestUserIDContext(t *testing.T) {
	ctx := WithUserID(context.Background(), "user-1")
	assert.Equal(t, "user-1", UserIDFromContext(ctx))
	assert.Equal(t, "", UserIDFromContext(context.Background()))
}

func TestContextOverwrite(t *testing.T) {
	ctx := WithRequestID(context.Background(), "first")
	ctx = WithRequestID(ctx, "second")
	assert.Equal(t, "second", RequestIDFromContext(ctx))
}

func TestLoggerFromContext(t *testing.T) {
	t.Run("adds present ids", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-1")

		logger := LoggerFromContext(ctx, zerolog.New(&buf))
		logger.Info().Msg("hello")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "req-1", entry["request_id"])
		assert.Equal(t, "user-1", entry["user_id"])
	})

	t.Run("skips absent ids", func(t *testing.T) {
		var buf bytes.Buffer
		logger := LoggerFromContext(context.Background(), zerolog.New(&buf))
		logger.Info().Msg("hello")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.NotContains(t, entry, "request_id")
		assert.NotContains(t, entry, "user_id")
	})
}

func TestLoggerForUser(t *testing.T) {
	t.Run("explicit user replaces the context user", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-ctx")

		logger := LoggerForUser(ctx, zerolog.New(&buf), "user-arg")
		logger.Info().Msg("hello")

		assert.Equal(t, 1, strings.Count(buf.String(), `"user_id"`))
		assert.Contains(t, buf.String(), `"user_id":"user-arg"`)
		assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	})

	t.Run("empty user falls back to context", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := WithUserID(context.Background(), "user-ctx")

		logger := LoggerForUser(ctx, zerolog.New(&buf), "")
		logger.Info().Msg("hello")

		assert.Equal(t, 1, strings.Count(buf.String(), `"user_id"`))
		assert.Contains(t, buf.String(), `"user_id":"user-ctx"`)
	})
}
