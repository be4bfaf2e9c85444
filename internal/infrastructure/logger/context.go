package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

// WithContext attaches a logger to the context
func WithContext(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the logger attached to the context, or a no-op
// logger when none is attached
func FromContext(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return log
	}
	return zap.NewNop()
}

// L is shorthand for FromContext
func L(ctx context.Context) *zap.Logger {
	return FromContext(ctx)
}

// WithRequestID stores the request ID in the context and attaches a
// logger carrying it as a field. Every log line written through the
// returned context is correlated to the request.
func WithRequestID(ctx context.Context, log *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	log = log.With(zap.String("request_id", requestID))
	return WithContext(ctx, log), log
}

// WithUserID stores the authenticated user ID in the context and
// attaches a logger carrying it as a field
func WithUserID(ctx context.Context, log *zap.Logger, userID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, userIDKey, userID)
	log = log.With(zap.String("user_id", userID))
	return WithContext(ctx, log), log
}

// GetRequestID returns the request ID stored in the context, if any
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetUserID returns the authenticated user ID stored in the context,
// if any
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
