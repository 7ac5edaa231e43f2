package lgr

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// WithRun starts a new trace for one pipeline run. The run id doubles as the trace id.
func WithRun(ctx context.Context, runID uuid.UUID) context.Context {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID(runID),
		SpanID:     newSpanID(),
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(ctx, sc)
}

// WithSpan keeps the run's trace id and assigns a fresh span id, one per processed frame.
func WithSpan(ctx context.Context) context.Context {
	parent := trace.SpanContextFromContext(ctx)
	if !parent.TraceID().IsValid() {
		return WithRun(ctx, uuid.New())
	}
	sc := parent.WithSpanID(newSpanID())
	return trace.ContextWithSpanContext(ctx, sc)
}

// RunID returns the trace id of the run carried by ctx, or an empty string.
func RunID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.TraceID().IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

func newSpanID() trace.SpanID {
	var id trace.SpanID
	u := uuid.New()
	copy(id[:], u[:8])
	return id
}
