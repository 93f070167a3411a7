package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_DefaultsToNop(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestContextValues(t *testing.T) {
	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), 42)
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, uint(42), UserID(ctx))

	assert.Empty(t, RequestID(context.Background()))
	assert.Zero(t, UserID(context.Background()))
}

func TestL_EnrichesFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithRequestID(ctx, "req-7")
	ctx = WithUserID(ctx, 3)

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx = trace.ContextWithSpanContext(ctx, sc)

	L(ctx).Info("hello")

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, uint64(3), fields["user_id"])
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
}

func TestL_NoFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	L(WithContext(context.Background(), zap.New(core))).Info("plain")
	require.Len(t, recorded.All(), 1)
	assert.Empty(t, recorded.All()[0].Context)
}
