package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is attached to every log line as "service".
const ServiceName = "job-board-service"

// LoggingConfig contains logger configuration options.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error, fatal, panic).
	Level string

	// Format is json, or console/pretty for human-readable lines.
	Format string

	// Output is stdout or stderr.
	Output string

	// AddSource adds the caller to each line.
	AddSource bool

	// TimeFormat is the timestamp layout; RFC 3339 when empty.
	TimeFormat string
}

// NewLogger builds the process logger. Every job board binary calls it once
// and derives per-component loggers with
// logger.With().Str("component", ...). Unknown levels fall back to info.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	out := io.Writer(os.Stdout)
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	return newLogger(cfg, out)
}

func newLogger(cfg LoggingConfig, out io.Writer) zerolog.Logger {
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	zerolog.TimeFieldFormat = timeFormat

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat}
	}

	lc := zerolog.New(out).With().Timestamp().Str("service", ServiceName)
	if cfg.AddSource {
		lc = lc.Caller()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)
	return lc.Logger().Level(level)
}

// parseLevel accepts zerolog level names in any case plus "warning".
func parseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// WithRequestContext adds the request id to a logger.
func WithRequestContext(logger zerolog.Logger, requestID string) zerolog.Logger {
	return logger.With().
		Str("request_id", requestID).
		Logger()
}

// WithJobPostContext adds job post fields to a logger.
func WithJobPostContext(logger zerolog.Logger, jobPostID, userID string) zerolog.Logger {
	return logger.With().
		Str("job_post_id", jobPostID).
		Str("user_id", userID).
		Logger()
}

// WithJobPostID adds only the job post id, for loggers that already carry
// the user.
func WithJobPostID(logger zerolog.Logger, jobPostID string) zerolog.Logger {
	return logger.With().Str("job_post_id", jobPostID).Logger()
}

// WithEventContext adds broker message fields to a logger.
func WithEventContext(logger zerolog.Logger, topic, messageKey string) zerolog.Logger {
	return logger.With().
		Str("topic", topic).
		Str("message_key", messageKey).
		Logger()
}

// WithSearchContext adds search engine fields to a logger.
func WithSearchContext(logger zerolog.Logger, index, documentID string) zerolog.Logger {
	ctx := logger.With().Str("index", index)
	if documentID != "" {
		ctx = ctx.Str("document_id", documentID)
	}
	return ctx.Logger()
}

// WithPartitionContext adds consumer position fields to a logger.
func WithPartitionContext(logger zerolog.Logger, partition int, offset int64) zerolog.Logger {
	return logger.With().
		Int("partition", partition).
		Int64("offset", offset).
		Logger()
}
