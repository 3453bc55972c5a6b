package lumen

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func fieldMap(t *testing.T, ctx context.Context) map[string]string {
	t.Helper()
	m := make(map[string]string)
	for _, f := range extractContextZapFields(ctx) {
		m[f.Key] = f.String
	}
	return m
}

func TestExtract_NilContext(t *testing.T) {
	if got := extractContextZapFields(nil); got != nil {
		t.Errorf("expected nil fields, got %v", got)
	}
}

func TestExtract_RequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")

	if RequestIDFromContext(ctx) != "req-1" {
		t.Error("RequestIDFromContext mismatch")
	}
	if fieldMap(t, ctx)["request_id"] != "req-1" {
		t.Error("request_id not extracted")
	}
}

func TestExtract_ManualTraceIDs(t *testing.T) {
	ctx := WithTraceID(context.Background(), "t-1")
	ctx = WithSpanID(ctx, "s-1")

	m := fieldMap(t, ctx)
	if m["trace_id"] != "t-1" || m["span_id"] != "s-1" {
		t.Errorf("manual ids not extracted: %v", m)
	}
}

func TestExtract_SpanContextWins(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
	spanID, _ := trace.SpanIDFromHex("0123456789abcdef")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})

	// A valid OTel span context overrides any manually set ids.
	ctx := WithTraceID(context.Background(), "manual")
	ctx = trace.ContextWithSpanContext(ctx, sc)

	m := fieldMap(t, ctx)
	if m["trace_id"] != traceID.String() {
		t.Errorf("expected otel trace id, got %q", m["trace_id"])
	}
	if m["span_id"] != spanID.String() {
		t.Errorf("expected otel span id, got %q", m["span_id"])
	}
}
