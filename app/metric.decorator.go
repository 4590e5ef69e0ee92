package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// NewMeteredRequest counts each call to req in usecases_total and records its
// duration in usecases_duration_seconds. Both carry the attributes command and
// status, which is either success or failure.
func NewMeteredRequest[Req any, Res any](meterProvider metric.MeterProvider, req Request[Req, Res]) Request[Req, Res] {
	return newMeteringDecorator(meterProvider, req)
}

func NewMeteredCommand[C any](meterProvider metric.MeterProvider, cmd Command[C]) Command[C] {
	return lower[C](newMeteringDecorator(meterProvider, lift(cmd)))
}

func NewMeteredQuery[Q any, Res any](meterProvider metric.MeterProvider, query Query[Q, Res]) Query[Q, Res] {
	return newMeteringDecorator[Q, Res](meterProvider, query)
}

func NewMeteredJob[J any](meterProvider metric.MeterProvider, job Job[J]) Job[J] {
	return lower[J](newMeteringDecorator(meterProvider, lift[J](job)))
}

func newMeteringDecorator[In any, Out any](meterProvider metric.MeterProvider, base Request[In, Out]) *meteringDecorator[In, Out] {
	meter := meterProvider.Meter(instrumentationName)

	// on error the meter returns a noop instrument, so the use case keeps working unmetered
	counter, _ := meter.Int64Counter("usecases", metric.WithDescription("number of executed use cases"))
	duration, _ := meter.Float64Histogram("usecases_duration_seconds", metric.WithDescription("duration of executed use cases"))

	return &meteringDecorator[In, Out]{counter: counter, duration: duration, base: base}
}

type meteringDecorator[In any, Out any] struct {
	counter  metric.Int64Counter
	duration metric.Float64Histogram
	base     Request[In, Out]
}

func (d *meteringDecorator[In, Out]) H(ctx context.Context, in In) (Out, error) { //nolint:ireturn // valid use of generics
	start := time.Now()

	out, err := d.base.H(ctx, in)

	status := "success"
	if err != nil {
		status = "failure"
	}

	attrs := metric.WithAttributes(
		attribute.String("command", commandName(in)),
		attribute.String("status", status),
	)

	d.counter.Add(ctx, 1, attrs)
	d.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	return out, err //nolint:wrapcheck // decorate but not change anything
}
