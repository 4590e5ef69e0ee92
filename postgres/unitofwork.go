package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoTransaction = errors.New("no transaction in context")

// UnitOfWork implements app.Transactor with a pgx transaction.
// Begin stores the transaction in the context under CtxTX,
// so that every repository using TxOrConn takes part in it.
type UnitOfWork struct {
	pgx *pgxpool.Pool
}

func NewUnitOfWork(pgx *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pgx: pgx}
}

func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	tx, err := u.pgx.Begin(ctx)
	if err != nil {
		return ctx, fmt.Errorf("could not start transaction: %w", err)
	}

	return context.WithValue(ctx, CtxTX, tx), nil
}

// SaveChanges commits the transaction. If ctx is done, nothing is committed.
func (u *UnitOfWork) SaveChanges(ctx context.Context) error {
	tx, ok := ctx.Value(CtxTX).(pgx.Tx)
	if !ok {
		return ErrNoTransaction
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Rollback discards the transaction. After a commit it is a noop.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := ctx.Value(CtxTX).(pgx.Tx)
	if !ok {
		return nil
	}

	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("could not rollback transaction: %w", err)
	}

	return nil
}
