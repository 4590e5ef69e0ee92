package app

import (
	"context"
	"errors"
	"sync"
)

//
// This file contains convenience helpers you can use to easier test
// your calling code relying on this use case pattern.
//

var ErrUseCaseFailed = errors.New("usecase failed")

func TestSuccessRequestHandler[Req any, Res any]() Request[Req, Res] {
	return TestRequestHandler(func(_ context.Context, _ Req) (Res, error) {
		return *new(Res), nil
	})
}

func TestFailureRequestHandler[Req any, Res any]() Request[Req, Res] {
	return TestRequestHandler(func(_ context.Context, _ Req) (Res, error) {
		return *new(Res), ErrUseCaseFailed
	})
}

// TestRequestHandler turns handler into a Request, so you can assert on the values passed to it.
func TestRequestHandler[Req any, Res any](handler func(ctx context.Context, req Req) (Res, error)) Request[Req, Res] {
	return requestFunc[Req, Res](handler)
}

func TestSuccessCommandHandler[C any]() Command[C] {
	return TestCommandHandler(func(_ context.Context, _ C) error { return nil })
}

func TestFailureCommandHandler[C any]() Command[C] {
	return TestCommandHandler(func(_ context.Context, _ C) error { return ErrUseCaseFailed })
}

func TestCommandHandler[C any](handler func(ctx context.Context, cmd C) error) Command[C] {
	return commandFunc[C](handler)
}

func TestSuccessQueryHandler[Q any, Res any]() Query[Q, Res] {
	return TestQueryHandler(func(_ context.Context, _ Q) (Res, error) {
		return *new(Res), nil
	})
}

func TestFailureQueryHandler[Q any, Res any]() Query[Q, Res] {
	return TestQueryHandler(func(_ context.Context, _ Q) (Res, error) {
		return *new(Res), ErrUseCaseFailed
	})
}

func TestQueryHandler[Q any, Res any](handler func(ctx context.Context, query Q) (Res, error)) Query[Q, Res] {
	return requestFunc[Q, Res](handler)
}

func TestSuccessJobHandler[J any]() Job[J] {
	return TestJobHandler(func(_ context.Context, _ J) error { return nil })
}

func TestFailureJobHandler[J any]() Job[J] {
	return TestJobHandler(func(_ context.Context, _ J) error { return ErrUseCaseFailed })
}

func TestJobHandler[J any](handler func(ctx context.Context, job J) error) Job[J] {
	return commandFunc[J](handler)
}

// NewTestUnitOfWork returns a Transactor that counts its calls.
// Use it to assert that a use case did or did not commit its changes.
func NewTestUnitOfWork() *TestUnitOfWork {
	return &TestUnitOfWork{}
}

type TestUnitOfWork struct {
	// Err is returned by SaveChanges, if set.
	Err error

	mu        sync.Mutex
	begins    int
	saves     int
	rollbacks int
}

var _ Transactor = (*TestUnitOfWork)(nil)

func (u *TestUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.begins++

	return ctx, nil
}

func (u *TestUnitOfWork) SaveChanges(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.saves++

	return u.Err
}

func (u *TestUnitOfWork) Rollback(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.rollbacks++

	return nil
}

// Saved returns how often SaveChanges was called.
func (u *TestUnitOfWork) Saved() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.saves
}

func (u *TestUnitOfWork) RolledBack() int {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.rollbacks
}
