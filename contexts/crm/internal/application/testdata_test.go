package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-arrower/bizadmin/contexts/crm/internal/domain"
	"github.com/go-arrower/bizadmin/repository"
)

var (
	ctx = context.Background()

	errRepo = errors.New("repository failed")
)

func newEmailTypeRepo(t *testing.T, names ...string) (*repository.MemoryRepository[domain.EmailType, domain.TypeID], []domain.EmailType) {
	t.Helper()

	repo := repository.NewMemoryRepository[domain.EmailType, domain.TypeID]()
	types := make([]domain.EmailType, 0, len(names))

	for _, name := range names {
		et, err := domain.NewEmailType(name, "")
		require.NoError(t, err)
		require.NoError(t, repo.Add(ctx, et))

		types = append(types, et)
	}

	return repo, types
}

// failingRepo fails on every call.
type failingRepo[E any] struct{}

func (failingRepo[E]) All(context.Context) ([]E, error) { return nil, errRepo }
func (failingRepo[E]) FindByID(context.Context, domain.TypeID) (E, error) {
	return *new(E), errRepo
}
func (failingRepo[E]) Add(context.Context, E) error    { return errRepo }
func (failingRepo[E]) Update(context.Context, E) error { return errRepo }
