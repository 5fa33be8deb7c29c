package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	t.Run("json lines carry the service name", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggingConfig{Level: "info", Format: "json"}, &buf)

		logger.Info().Str("component", "server").Msg("starting")

		logEntry := decodeEntry(t, &buf)
		assert.Equal(t, ServiceName, logEntry["service"])
		assert.Equal(t, "server", logEntry["component"])
		assert.Equal(t, "starting", logEntry["message"])
		assert.Contains(t, logEntry, "time")
	})

	t.Run("drops lines below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)

		logger.Info().Msg("hidden")
		assert.Zero(t, buf.Len())

		logger.Warn().Msg("shown")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("console format is not json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggingConfig{Level: "info", Format: "console"}, &buf)

		logger.Info().Msg("hello")

		assert.Contains(t, buf.String(), "hello")
		assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	})

	t.Run("add source includes the caller", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggingConfig{Level: "info", AddSource: true}, &buf)

		logger.Info().Msg("hello")

		assert.Contains(t, decodeEntry(t, &buf), "caller")
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"TRACE", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"FATAL", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"PANIC", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseLevel(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	return logEntry
}

func TestWithJobPostContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	enriched := WithJobPostContext(logger, "post-123", "user-456")
	enriched.Info().Msg("test message")

	logEntry := decodeEntry(t, &buf)
	assert.Equal(t, "post-123", logEntry["job_post_id"])
	assert.Equal(t, "user-456", logEntry["user_id"])
}

func TestWithJobPostID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	enriched := WithJobPostID(logger, "post-123")
	enriched.Info().Msg("test message")

	logEntry := decodeEntry(t, &buf)
	assert.Equal(t, "post-123", logEntry["job_post_id"])
	assert.NotContains(t, logEntry, "user_id")
}

func TestWithEventContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	enriched := WithEventContext(logger, "job-posts.created", "post-1")
	enriched.Info().Msg("test message")

	logEntry := decodeEntry(t, &buf)
	assert.Equal(t, "job-posts.created", logEntry["topic"])
	assert.Equal(t, "post-1", logEntry["message_key"])
}

func TestWithSearchContext(t *testing.T) {
	t.Run("with document id", func(t *testing.T) {
		var buf bytes.Buffer
		enriched := WithSearchContext(zerolog.New(&buf), "job-posts", "doc-1")
		enriched.Info().Msg("indexed")

		logEntry := decodeEntry(t, &buf)
		assert.Equal(t, "job-posts", logEntry["index"])
		assert.Equal(t, "doc-1", logEntry["document_id"])
	})

	t.Run("without document id", func(t *testing.T) {
		var buf bytes.Buffer
		enriched := WithSearchContext(zerolog.New(&buf), "job-posts", "")
		enriched.Info().Msg("searched")

		logEntry := decodeEntry(t, &buf)
		assert.Equal(t, "job-posts", logEntry["index"])
		assert.NotContains(t, logEntry, "document_id")
	})
}

func TestWithPartitionContext(t *testing.T) {
	var buf bytes.Buffer
	enriched := WithPartitionContext(zerolog.New(&buf), 2, 1041)
	enriched.Info().Msg("message")

	logEntry := decodeEntry(t, &buf)
	assert.Equal(t, float64(2), logEntry["partition"])
	assert.Equal(t, float64(1041), logEntry["offset"])
}

func TestLoggerContextChaining(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	// Chain multiple context enrichments
	enriched := WithRequestContext(logger, "req-1")
	enriched = WithJobPostContext(enriched, "post-1", "user-1")
	enriched = WithEventContext(enriched, "job-posts.updated", "post-1")
	enriched.Info().Msg("chained context")

	logEntry := decodeEntry(t, &buf)

	// All fields should be present
	assert.Equal(t, "req-1", logEntry["request_id"])
	assert.Equal(t, "post-1", logEntry["job_post_id"])
	assert.Equal(t, "user-1", logEntry["user_id"])
	assert.Equal(t, "job-posts.updated", logEntry["topic"])
	assert.Equal(t, "post-1", logEntry["message_key"])
}
