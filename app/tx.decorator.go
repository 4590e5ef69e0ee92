package app

import (
	"context"
	"errors"
	"fmt"
)

// UnitOfWork commits all changes made by the repositories within one request.
// SaveChanges is the only commit boundary of a use case.
type UnitOfWork interface {
	SaveChanges(ctx context.Context) error
}

// Transactor is a UnitOfWork that can be started and discarded.
// Begin returns a context carrying the transaction or change set, to be passed to the repositories.
// Rollback discards everything not yet saved. After SaveChanges it is a noop.
type Transactor interface {
	UnitOfWork

	Begin(ctx context.Context) (context.Context, error)
	Rollback(ctx context.Context) error
}

var ErrTransaction = errors.New("unit of work failed")

// rollback runs independent of the cancellation of ctx,
// so that a canceled request still releases its transaction.
func rollback(ctx context.Context, tx Transactor, err error) error {
	if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
		rbErr = fmt.Errorf("%w: could not rollback: %w", ErrTransaction, rbErr)
		if err == nil {
			return rbErr
		}

		return errors.Join(err, rbErr)
	}

	return err
}

// NewTxRequest runs req inside a unit of work.
// The handler commits by calling SaveChanges, everything else is rolled back.
func NewTxRequest[Req any, Res any](tx Transactor, req Request[Req, Res]) Request[Req, Res] {
	return &requestTxDecorator[Req, Res]{
		tx:   tx,
		base: req,
	}
}

type requestTxDecorator[Req any, Res any] struct {
	tx   Transactor
	base Request[Req, Res]
}

func (d *requestTxDecorator[Req, Res]) H(ctx context.Context, req Req) (Res, error) { //nolint:ireturn,lll // valid use of generics
	txCtx, err := d.tx.Begin(ctx)
	if err != nil {
		return *new(Res), fmt.Errorf("%w: could not begin: %w", ErrTransaction, err)
	}

	res, err := d.base.H(txCtx, req)
	if err = rollback(txCtx, d.tx, err); err != nil {
		return *new(Res), err
	}

	return res, nil
}

func NewTxCommand[C any](tx Transactor, cmd Command[C]) Command[C] {
	return &commandTxDecorator[C]{
		tx:   tx,
		base: cmd,
	}
}

type commandTxDecorator[C any] struct {
	tx   Transactor
	base Command[C]
}

func (d *commandTxDecorator[C]) H(ctx context.Context, cmd C) error {
	txCtx, err := d.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: could not begin: %w", ErrTransaction, err)
	}

	return rollback(txCtx, d.tx, d.base.H(txCtx, cmd))
}

func NewTxJob[J any](tx Transactor, job Job[J]) Job[J] {
	return &jobTxDecorator[J]{
		tx:   tx,
		base: job,
	}
}

type jobTxDecorator[J any] struct {
	tx   Transactor
	base Job[J]
}

func (d *jobTxDecorator[J]) H(ctx context.Context, job J) error {
	txCtx, err := d.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: could not begin: %w", ErrTransaction, err)
	}

	return rollback(txCtx, d.tx, d.base.H(txCtx, job))
}
