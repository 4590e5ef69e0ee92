package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/go-arrower/bizadmin/contexts/crm/internal/domain"
	"github.com/go-arrower/bizadmin/repository"
)

// typeRow is the layout shared by all tables of reference data.
type typeRow struct {
	ID          domain.TypeID
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
}

// Tables of the reference data.
const (
	TableAddressType     = "crm.address_type"
	TableEmailType       = "crm.email_type"
	TablePhoneType       = "crm.phone_type"
	TableTitle           = "crm.title"
	TableModule          = "crm.module"
	TableSocialMediaType = "crm.social_media_type"
)

// NewTypePostgresRepository persists one kind in table. All is ordered by the time of creation.
func NewTypePostgresRepository[E any, P domain.Entity[E]](pgx *pgxpool.Pool, table string) *TypePostgresRepository[E, P] {
	return &TypePostgresRepository[E, P]{
		rows: repository.NewPostgresRepository[typeRow, domain.TypeID](pgx,
			repository.WithTable(table),
			repository.WithOrderBy("created_at", "id"),
		),
	}
}

type TypePostgresRepository[E any, P domain.Entity[E]] struct {
	rows *repository.PostgresRepository[typeRow, domain.TypeID]
}

var _ domain.TypeRepository[domain.EmailType] = (*TypePostgresRepository[domain.EmailType, *domain.EmailType])(nil)

func (repo *TypePostgresRepository[E, P]) All(ctx context.Context) ([]E, error) {
	rows, err := repo.rows.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get all: %w", err)
	}

	entities := make([]E, 0, len(rows))
	for _, r := range rows {
		entities = append(entities, toEntity[E, P](r))
	}

	return entities, nil
}

// FindByID returns an error wrapping repository.ErrNotFound for ids that are not a uuid,
// as no row can have them.
func (repo *TypePostgresRepository[E, P]) FindByID(ctx context.Context, id domain.TypeID) (E, error) { //nolint:ireturn,lll // valid use of generics
	if _, err := uuid.Parse(string(id)); err != nil {
		return *new(E), fmt.Errorf("%w: id=%s", repository.ErrNotFound, id)
	}

	r, err := repo.rows.FindByID(ctx, id)
	if err != nil {
		return *new(E), fmt.Errorf("could not find: %w", err)
	}

	return toEntity[E, P](r), nil
}

func (repo *TypePostgresRepository[E, P]) Add(ctx context.Context, entity E) error {
	if err := repo.rows.Add(ctx, toRow[E, P](entity)); err != nil {
		return fmt.Errorf("could not add: %w", err)
	}

	return nil
}

func (repo *TypePostgresRepository[E, P]) Update(ctx context.Context, entity E) error {
	if err := repo.rows.Update(ctx, toRow[E, P](entity)); err != nil {
		return fmt.Errorf("could not update: %w", err)
	}

	return nil
}

func toEntity[E any, P domain.Entity[E]](r typeRow) E {
	var e E

	*P(&e).Base() = domain.ReferenceType{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt.UTC(),
	}

	return e
}

func toRow[E any, P domain.Entity[E]](e E) typeRow {
	t := P(&e).Base()

	return typeRow{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Active:      t.Active,
		CreatedAt:   t.CreatedAt,
	}
}
