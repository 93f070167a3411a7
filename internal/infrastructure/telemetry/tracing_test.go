package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/doorsets/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs an in-memory tracer provider for the test
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestStartSpan(t *testing.T) {
	sr := recordSpans(t)

	ctx, span := telemetry.StartServiceSpan(context.Background(), "pick_list", "complete",
		telemetry.WithAttribute(telemetry.SpanAttrPickListID, uint(7)),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentNumber, "PL-000007"),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	assert.NotEmpty(t, telemetry.GetSpanID(ctx))

	telemetry.SetAttributes(span, telemetry.SpanAttrQuantity, 5, 42, "skipped", "dangling")
	telemetry.AddEvent(span, "stock_checked", "shortfall", 2)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "pick_list.complete", s.Name())
	assert.Equal(t, trace.SpanKindServer, s.SpanKind())

	attrs := attrMap(s.Attributes())
	assert.Equal(t, int64(7), attrs[telemetry.SpanAttrPickListID].AsInt64())
	assert.Equal(t, "PL-000007", attrs[telemetry.SpanAttrDocumentNumber].AsString())
	assert.Equal(t, int64(5), attrs[telemetry.SpanAttrQuantity].AsInt64())
	assert.Len(t, attrs, 3)

	require.Len(t, s.Events(), 1)
	assert.Equal(t, "stock_checked", s.Events()[0].Name)
}

func TestRecordError(t *testing.T) {
	sr := recordSpans(t)

	_, span := telemetry.StartSpan(context.Background(), "purchase_order.receive")
	telemetry.RecordError(span, nil)
	telemetry.RecordError(span, errors.New("over receipt"))
	span.End()

	s := sr.Ended()[0]
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "over receipt", s.Status().Description)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "exception", s.Events()[0].Name)
}

func TestTraceIDWithoutSpan(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "a", 1)
		telemetry.AddEvent(nil, "e")
		telemetry.RecordError(nil, errors.New("x"))
	})
}
