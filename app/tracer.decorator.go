package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "bizadmin.application"

// NewTracedRequest records each call to req in a span named after the use case.
// Failures set the status of the span to error.
func NewTracedRequest[Req any, Res any](traceProvider trace.TracerProvider, req Request[Req, Res]) Request[Req, Res] {
	return newTracingDecorator(traceProvider, kindRequest, req)
}

func NewTracedCommand[C any](traceProvider trace.TracerProvider, cmd Command[C]) Command[C] {
	return lower[C](newTracingDecorator(traceProvider, kindCommand, lift(cmd)))
}

func NewTracedQuery[Q any, Res any](traceProvider trace.TracerProvider, query Query[Q, Res]) Query[Q, Res] {
	return newTracingDecorator[Q, Res](traceProvider, kindQuery, query)
}

func NewTracedJob[J any](traceProvider trace.TracerProvider, job Job[J]) Job[J] {
	return lower[J](newTracingDecorator(traceProvider, kindJob, lift[J](job)))
}

func newTracingDecorator[In any, Out any](
	traceProvider trace.TracerProvider,
	kind kind,
	base Request[In, Out],
) *tracingDecorator[In, Out] {
	return &tracingDecorator[In, Out]{
		tracer: traceProvider.Tracer(instrumentationName),
		kind:   kind,
		base:   base,
	}
}

type tracingDecorator[In any, Out any] struct {
	tracer trace.Tracer
	kind   kind
	base   Request[In, Out]
}

func (d *tracingDecorator[In, Out]) H(ctx context.Context, in In) (Out, error) { //nolint:ireturn // valid use of generics
	name := commandName(in)

	ctx, span := d.tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String("usecase.kind", string(d.kind)),
			attribute.String("usecase.name", name),
		),
	)
	defer span.End()

	out, err := d.base.H(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, AsDomainError(err).Code)
	}

	return out, err //nolint:wrapcheck // decorate but not change anything
}
