package main

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/kherrera/stampede/internal/actor"
	"github.com/kherrera/stampede/internal/tracing"
)

// withTracing wraps an operation so that every call is recorded as a
// client span.
func withTracing(op actor.Operation, tracer trace.Tracer, protocol, target string) actor.Operation {
	if tracer == nil {
		return op
	}
	return actor.OperationFunc(func(ctx context.Context) error {
		ctx, span := tracing.StartCallSpan(ctx, tracer, protocol, target)
		err := op.Do(ctx)
		tracing.EndSpan(span, err)
		return err
	})
}
