// Package apm wraps OpenTelemetry tracing behind small interfaces so
// application code never imports the SDK directly.
package apm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts and recovers spans for one instrumented component.
type Tracer interface {
	// StartSpanFromContext opens a child span of whatever span the
	// context already carries.
	StartSpanFromContext(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, Span)

	// SpanFromContext returns the span the context carries, or a no-op
	// span when it carries none.
	SpanFromContext(ctx context.Context) Span

	// GetTracer exposes the underlying otel tracer for libraries that
	// take one directly.
	GetTracer() trace.Tracer
}

// NewTracer builds a Tracer named after the component it instruments.
// It resolves through the global provider, so a Tracer built before the
// provider is configured still emits once it is.
func NewTracer(name string) Tracer {
	return &componentTracer{tracer: otel.Tracer(name)}
}

type componentTracer struct {
	tracer trace.Tracer
}

func (t *componentTracer) StartSpanFromContext(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, Span) {
	spanCtx, span := t.tracer.Start(ctx, spanName, opts...)
	return spanCtx, NewSpan(span)
}

func (t *componentTracer) SpanFromContext(ctx context.Context) Span {
	return NewSpan(trace.SpanFromContext(ctx))
}

func (t *componentTracer) GetTracer() trace.Tracer {
	return t.tracer
}
