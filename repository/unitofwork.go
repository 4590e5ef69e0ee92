package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ctx2 "github.com/go-arrower/bizadmin/ctx"
)

const ctxChangeSet ctx2.CTXKey = "repository.changeset"

var ErrNoChangeSet = errors.New("no change set in context")

// MemoryUnitOfWork implements app.Transactor for the MemoryRepository.
//
// Begin puts a change set into the context. Writes of every MemoryRepository called with that
// context are staged in the change set and only applied on SaveChanges, in the order they were made.
// Reads do not see staged writes.
//
// Warning: applying is not atomic. If one write fails, the previous ones stay applied.
type MemoryUnitOfWork struct{}

func NewMemoryUnitOfWork() *MemoryUnitOfWork {
	return &MemoryUnitOfWork{}
}

func (u *MemoryUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	return context.WithValue(ctx, ctxChangeSet, &changeSet{}), nil
}

// SaveChanges applies all staged writes. If ctx is done, nothing is applied.
func (u *MemoryUnitOfWork) SaveChanges(ctx context.Context) error {
	cs := changeSetFromContext(ctx)
	if cs == nil {
		return ErrNoChangeSet
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("could not save changes: %w", err)
	}

	return cs.apply()
}

// Rollback discards all staged writes.
func (u *MemoryUnitOfWork) Rollback(ctx context.Context) error {
	if cs := changeSetFromContext(ctx); cs != nil {
		cs.discard()
	}

	return nil
}

type changeSet struct {
	mu      sync.Mutex
	changes []func() error
}

func changeSetFromContext(ctx context.Context) *changeSet {
	if cs, ok := ctx.Value(ctxChangeSet).(*changeSet); ok {
		return cs
	}

	return nil
}

func (cs *changeSet) stage(change func() error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.changes = append(cs.changes, change)
}

func (cs *changeSet) apply() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for _, change := range cs.changes {
		if err := change(); err != nil {
			cs.changes = nil

			return err
		}
	}

	cs.changes = nil

	return nil
}

func (cs *changeSet) discard() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.changes = nil
}

// Stage lets other in memory stores take part in a MemoryUnitOfWork.
// If ctx carries a change set, change runs on SaveChanges, after the writes staged before it,
// and never if the unit of work is rolled back. Otherwise change runs immediately.
func Stage(ctx context.Context, change func() error) error {
	return write(ctx, change)
}

// write stages change if ctx carries a change set and applies it immediately otherwise.
func write(ctx context.Context, change func() error) error {
	if cs := changeSetFromContext(ctx); cs != nil {
		cs.stage(change)

		return nil
	}

	return change()
}
