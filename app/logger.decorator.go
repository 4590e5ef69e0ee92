package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-arrower/bizadmin/alog"
)

// NewLoggedRequest logs each call to req at debug level.
// Expected failures, like a failed validation, stay at debug level as well.
// Unexpected failures are logged at info level with the code of the DomainError.
func NewLoggedRequest[Req any, Res any](logger alog.Logger, req Request[Req, Res]) Request[Req, Res] {
	return &loggingDecorator[Req, Res]{logger: logger, kind: kindRequest, base: req}
}

func NewLoggedCommand[C any](logger alog.Logger, cmd Command[C]) Command[C] {
	return lower[C](&loggingDecorator[C, none]{logger: logger, kind: kindCommand, base: lift(cmd)})
}

func NewLoggedQuery[Q any, Res any](logger alog.Logger, query Query[Q, Res]) Query[Q, Res] {
	return &loggingDecorator[Q, Res]{logger: logger, kind: kindQuery, base: query}
}

func NewLoggedJob[J any](logger alog.Logger, job Job[J]) Job[J] {
	return lower[J](&loggingDecorator[J, none]{logger: logger, kind: kindJob, base: lift[J](job)})
}

type loggingDecorator[In any, Out any] struct {
	logger alog.Logger
	kind   kind
	base   Request[In, Out]
}

func (d *loggingDecorator[In, Out]) H(ctx context.Context, in In) (Out, error) { //nolint:ireturn // valid use of generics
	name := slog.String(string(d.kind), commandName(in))

	d.logger.LogAttrs(ctx, slog.LevelDebug, "executing "+string(d.kind), name)

	start := time.Now()
	out, err := d.base.H(ctx, in)
	took := slog.Duration("duration", time.Since(start))

	if err == nil {
		d.logger.LogAttrs(ctx, slog.LevelDebug, string(d.kind)+" succeeded", name, took)

		return out, nil
	}

	dErr := AsDomainError(err)

	level := slog.LevelInfo
	if errors.Is(dErr, ErrValidation) || errors.Is(dErr, ErrNotFound) {
		level = slog.LevelDebug
	}

	d.logger.LogAttrs(ctx, level, string(d.kind)+" failed", name, took,
		alog.Error(err),
		slog.String("code", dErr.Code),
	)

	return out, err //nolint:wrapcheck // decorate but not change anything
}
