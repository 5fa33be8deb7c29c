package observability

import (
	"context"

	"github.com/rs/zerolog"
)

// Context keys for observability data.
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// WithUserID adds the owning user ID to the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the user ID from context.
// Returns empty string if not present.
func UserIDFromContext(ctx context.Context) string {
	if v := ctx.Value(userIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// LoggerFromContext returns base enriched with the request and user IDs
// stored in ctx, skipping any that are absent.
func LoggerFromContext(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	return LoggerForUser(ctx, base, "")
}

// LoggerForUser is LoggerFromContext with userID as the user field, so the
// field appears once even when ctx carries a user too. An empty userID
// falls back to the one in ctx.
func LoggerForUser(ctx context.Context, base zerolog.Logger, userID string) zerolog.Logger {
	lc := base.With()
	if id := RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	if userID == "" {
		userID = UserIDFromContext(ctx)
	}
	if userID != "" {
		lc = lc.Str("user_id", userID)
	}
	return lc.Logger()
}
