package lumen

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	tracer := noopTracer{}

	spanCtx, span := tracer.Start(ctx, "Op")
	if spanCtx != ctx {
		t.Error("noop tracer must not alter the context")
	}

	// None of these may panic.
	span.SetStatus(codes.Error, "failed")
	span.RecordError(errors.New("boom"))
	span.SetAttributes(attribute.String("k", "v"))
	span.AddEvent("evt", attribute.Int("n", 1))
	span.End()
}

func TestGuard_TracerWithoutLiveExport(t *testing.T) {
	guard, _, err := Init(Default())
	if err != nil {
		t.Fatal(err)
	}
	defer guard.Close(context.Background())

	_, span := guard.Tracer("component").Start(context.Background(), "Op",
		WithSpanKind(trace.SpanKindServer),
		WithAttributes(attribute.String("k", "v")),
	)
	span.End()
}
