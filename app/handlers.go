// Package app provides the contracts for use cases in the application layer
// and common decorators for them.
//
// Every use case is a single handler with one method H. It either runs to completion
// or fails with an error, there are no partial results.
package app

import (
	"context"
	"reflect"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-arrower/bizadmin/alog"
)

// Request can produce side effects and return data.
// It is a command returning a value, e.g. the id of a created entity.
type Request[Req any, Res any] interface {
	H(ctx context.Context, req Req) (Res, error)
}

// Command produces side effects, e.g. mutate state.
type Command[C any] interface {
	H(ctx context.Context, cmd C) error
}

// Query does not produce side effects and returns data.
type Query[Q any, Res any] interface {
	H(ctx context.Context, query Q) (Res, error)
}

// Job produces side effects.
// It is started by the application itself and not by a user.
type Job[J any] interface {
	H(ctx context.Context, job J) error
}

// kind names the type of use case in logs, traces, and metrics.
type kind string

const (
	kindRequest kind = "request"
	kindCommand kind = "command"
	kindQuery   kind = "query"
	kindJob     kind = "job"
)

// NewInstrumentedRequest traces, meters, and logs req, in this order.
func NewInstrumentedRequest[Req any, Res any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	req Request[Req, Res],
) Request[Req, Res] {
	return NewTracedRequest(traceProvider, NewMeteredRequest(meterProvider, NewLoggedRequest(logger, req)))
}

func NewInstrumentedCommand[C any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	cmd Command[C],
) Command[C] {
	return NewTracedCommand(traceProvider, NewMeteredCommand(meterProvider, NewLoggedCommand(logger, cmd)))
}

func NewInstrumentedQuery[Q any, Res any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	query Query[Q, Res],
) Query[Q, Res] {
	return NewTracedQuery(traceProvider, NewMeteredQuery(meterProvider, NewLoggedQuery(logger, query)))
}

func NewInstrumentedJob[J any](
	traceProvider trace.TracerProvider,
	meterProvider metric.MeterProvider,
	logger alog.Logger,
	job Job[J],
) Job[J] {
	return NewTracedJob(traceProvider, NewMeteredJob(meterProvider, NewLoggedJob(logger, job)))
}

// The decorators are written once against Request. Commands and jobs are
// lifted into a Request without a result and lowered back afterwards.

type none struct{}

type requestFunc[Req any, Res any] func(ctx context.Context, req Req) (Res, error)

func (f requestFunc[Req, Res]) H(ctx context.Context, req Req) (Res, error) { //nolint:ireturn // valid use of generics
	return f(ctx, req)
}

type commandFunc[C any] func(ctx context.Context, cmd C) error

func (f commandFunc[C]) H(ctx context.Context, cmd C) error {
	return f(ctx, cmd)
}

func lift[C any](cmd Command[C]) Request[C, none] {
	return requestFunc[C, none](func(ctx context.Context, c C) (none, error) {
		return none{}, cmd.H(ctx, c)
	})
}

func lower[C any](req Request[C, none]) Command[C] {
	return commandFunc[C](func(ctx context.Context, c C) error {
		_, err := req.H(ctx, c)

		return err //nolint:wrapcheck // decorate but not change anything
	})
}

// commandName is the name a use case is known by: <context>.<package>.<struct>,
// e.g. crm.application.GetEmailTypesQuery. The handlers are generic and shared
// by several kinds, so the type of the input identifies the use case.
func commandName(cmd any) string {
	name := reflect.TypeOf(cmd).String()

	_, inContext, found := strings.Cut(reflect.TypeOf(cmd).PkgPath(), "/contexts/")
	if !found {
		return name
	}

	boundedContext, _, found := strings.Cut(inContext, "/internal/")
	if !found {
		return name
	}

	return boundedContext + "." + name
}

// typeName returns the name of the struct of v, without the package.
func typeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "Request"
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if name := t.Name(); name != "" {
		return name
	}

	return "Request"
}
