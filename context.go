// Context helpers propagate trace and request identifiers through
// context.Context. Values set here are extracted into every log entry.
//
// With live export active, trace_id and span_id come from the OTel span
// context automatically; WithTraceID covers non-OTel setups.
package lumen

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// contextKey is an unexported type for context keys defined in this package.
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	traceIDKey   contextKey = "trace_id"
	spanIDKey    contextKey = "span_id"
)

// WithRequestID adds a request ID to the context. It is automatically
// included in log entries.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithTraceID adds a trace ID to the context for setups without an active
// OTel span.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// WithSpanID adds a span ID to the context for setups without an active
// OTel span.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, spanIDKey, spanID)
}

// extractContextZapFields pulls trace/span/request IDs from the context.
// Allocates only when something is found.
func extractContextZapFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}

	var fields []zap.Field

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		fields = append(fields,
			zap.String("trace_id", spanCtx.TraceID().String()),
			zap.String("span_id", spanCtx.SpanID().String()),
		)
	} else {
		if traceID, ok := ctx.Value(traceIDKey).(string); ok && traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		if spanID, ok := ctx.Value(spanIDKey).(string); ok && spanID != "" {
			fields = append(fields, zap.String("span_id", spanID))
		}
	}

	if reqID, ok := ctx.Value(requestIDKey).(string); ok && reqID != "" {
		fields = append(fields, zap.String("request_id", reqID))
	}

	return fields
}
