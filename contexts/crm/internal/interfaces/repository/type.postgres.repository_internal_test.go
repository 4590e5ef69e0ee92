package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/bizadmin/aassert"
	"github.com/go-arrower/bizadmin/contexts/crm/internal/domain"
	"github.com/go-arrower/bizadmin/repository"
)

func TestTypeRowMapping(t *testing.T) {
	t.Parallel()

	t.Run("fields are all mapped", func(t *testing.T) {
		t.Parallel()

		aassert.NumFields(t, 5, typeRow{})
		aassert.NumFields(t, 5, domain.ReferenceType{})
	})

	t.Run("entity to row and back", func(t *testing.T) {
		t.Parallel()

		title, err := domain.NewTitle("Dr.", "doctor")
		assert.NoError(t, err)

		title.Deactivate()

		row := toRow[domain.Title](title)
		assert.Equal(t, title.ID, row.ID)
		assert.False(t, row.Active)

		row.CreatedAt = row.CreatedAt.In(time.FixedZone("CEST", 2*60*60))

		got := toEntity[domain.Title](row)
		assert.Equal(t, title.ReferenceType, got.ReferenceType)
		assert.Equal(t, time.UTC, got.CreatedAt.Location())
	})
}

func TestTypePostgresRepository_FindByID(t *testing.T) {
	t.Parallel()

	t.Run("malformed id is not found", func(t *testing.T) {
		t.Parallel()

		// no pool is needed, the id is rejected before any query
		repo := NewTypePostgresRepository[domain.EmailType, *domain.EmailType](nil, TableEmailType)

		_, err := repo.FindByID(context.Background(), "does-not-exist")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
