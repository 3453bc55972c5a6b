package lumen

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attr is a key-value pair for span attributes, an alias for the standard
// OTel attribute.KeyValue. Construct values with the attribute package
// constructors (attribute.String, attribute.Int64, ...).
type Attr = attribute.KeyValue

// Tracer creates spans for distributed tracing.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, spanName string, opts ...SpanOption) (context.Context, Span)
}

// Span represents a unit of work in a trace.
type Span interface {
	// End marks the span as complete.
	End()
	// SetStatus sets the span status.
	SetStatus(code codes.Code, description string)
	// RecordError records an error as an event.
	RecordError(err error)
	// SetAttributes sets attributes on the span.
	SetAttributes(attrs ...Attr)
	// AddEvent adds an event to the span.
	AddEvent(name string, attrs ...Attr)
}

// SpanOption configures span creation.
type SpanOption interface {
	apply(*spanOptions)
}

type spanOptions struct {
	kind       trace.SpanKind
	attributes []Attr
}

type kindOption trace.SpanKind

func (k kindOption) apply(o *spanOptions) { o.kind = trace.SpanKind(k) }

// WithSpanKind sets the span kind (client, server, producer, consumer).
func WithSpanKind(kind trace.SpanKind) SpanOption { return kindOption(kind) }

type attrOption []Attr

func (a attrOption) apply(o *spanOptions) { o.attributes = append(o.attributes, a...) }

// WithAttributes adds attributes to the span at start.
func WithAttributes(attrs ...Attr) SpanOption { return attrOption(attrs) }

// --- OTel-backed implementation ---

type otelTracer struct {
	tracer trace.Tracer
}

func newOtelTracer(name string) Tracer {
	return &otelTracer{tracer: otel.Tracer(name)}
}

func (t *otelTracer) Start(ctx context.Context, spanName string, opts ...SpanOption) (context.Context, Span) {
	o := &spanOptions{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt.apply(o)
	}

	traceOpts := []trace.SpanStartOption{trace.WithSpanKind(o.kind)}
	if len(o.attributes) > 0 {
		traceOpts = append(traceOpts, trace.WithAttributes(o.attributes...))
	}

	ctx, span := t.tracer.Start(ctx, spanName, traceOpts...)
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End()                                   { s.span.End() }
func (s *otelSpan) SetStatus(code codes.Code, desc string) { s.span.SetStatus(code, desc) }
func (s *otelSpan) RecordError(err error)                  { s.span.RecordError(err) }
func (s *otelSpan) SetAttributes(attrs ...Attr)            { s.span.SetAttributes(attrs...) }
func (s *otelSpan) AddEvent(name string, attrs ...Attr) {
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// --- No-op implementation, returned when live export is off ---

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string, _ ...SpanOption) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End()                         {}
func (noopSpan) SetStatus(codes.Code, string) {}
func (noopSpan) RecordError(error)            {}
func (noopSpan) SetAttributes(...Attr)        {}
func (noopSpan) AddEvent(string, ...Attr)     {}
