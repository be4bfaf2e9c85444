package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAndFromContext(t *testing.T) {
	log := zap.NewNop()
	ctx := WithContext(context.Background(), log)

	assert.Same(t, log, FromContext(ctx))
	assert.Same(t, log, L(ctx))
}

func TestFromContextReturnsNopWhenMissing(t *testing.T) {
	got := FromContext(context.Background())
	assert.NotNil(t, got)
	assert.NotPanics(t, func() {
		got.Info("should not panic")
	})
}

func TestWithRequestIDEnrichesLoggerAndContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	ctx, reqLog := WithRequestID(context.Background(), zap.New(core), "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Same(t, reqLog, FromContext(ctx))

	L(ctx).Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
}

func TestWithUserIDEnrichesLoggerAndContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	ctx, _ := WithRequestID(context.Background(), zap.New(core), "req-123")
	ctx, _ = WithUserID(ctx, FromContext(ctx), "user-456")
	assert.Equal(t, "user-456", GetUserID(ctx))

	L(ctx).Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "user-456", fields["user_id"])
}

func TestGetRequestIDNotFound(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestGetUserIDNotFound(t *testing.T) {
	assert.Empty(t, GetUserID(context.Background()))
}
