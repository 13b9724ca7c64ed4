// Package tracing carries an OpenTelemetry tracer through a context and
// offers span helpers for the race coordinator. When no tracer is
// present, the helpers degrade to no-op spans, so instrumentation costs
// nothing unless a caller opts in.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// contextKey is a unique type for context values to avoid collisions.
type contextKey string

// tracerKey is the context key the tracer is stored under.
const tracerKey contextKey = "tracer"

// WithTracer stores an OpenTelemetry tracer in the context. Spans opened
// via StartSpan on a descendant context will use it.
func WithTracer(ctx context.Context, tracer trace.Tracer) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, tracerKey, tracer)
}

// FromContext retrieves the tracer from the context.
// Returns nil and false when no tracer was attached.
func FromContext(ctx context.Context) (trace.Tracer, bool) { //nolint:ireturn
	if ctx == nil {
		return nil, false
	}

	tracer, ok := ctx.Value(tracerKey).(trace.Tracer)

	return tracer, ok
}

// StartSpan opens a span named name on the context's tracer, attaching
// the given attributes. When the context carries no tracer, the original
// context and the (possibly no-op) span already in the context are
// returned, so callers never need to branch.
func StartSpan(
	ctx context.Context, name string, attrs ...attribute.KeyValue,
) (context.Context, trace.Span) { //nolint:spancheck
	tracer, ok := FromContext(ctx)
	if !ok {
		return ctx, trace.SpanFromContext(ctx)
	}

	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records the outcome on the span and ends it. A non-nil error
// is recorded and sets an error status; otherwise the status is OK.
// Safe to call on no-op spans.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "ok")
	}

	span.End()
}
