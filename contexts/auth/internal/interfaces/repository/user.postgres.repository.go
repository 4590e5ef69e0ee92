package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
	"github.com/go-arrower/bizadmin/repository"
)

const (
	TableUser    = "auth.user"
	TableSession = "auth.session"
)

type userRow struct {
	ID            domain.ID
	Login         domain.Login
	FirstName     string
	LastName      string
	DisplayName   string
	PasswordHash  string
	RegisteredAt  time.Time
	ActiveSince   *time.Time
	VerifiedSince *time.Time
}

func NewUserPostgresRepository(pgx *pgxpool.Pool) *UserPostgresRepository {
	return &UserPostgresRepository{
		rows: repository.NewPostgresRepository[userRow, domain.ID](pgx,
			repository.WithTable(TableUser),
			repository.WithOrderBy("login"),
		),
	}
}

type UserPostgresRepository struct {
	rows *repository.PostgresRepository[userRow, domain.ID]
}

var _ domain.UserRepository = (*UserPostgresRepository)(nil)

func (repo *UserPostgresRepository) All(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	query := repository.Builder.Select(repo.rows.Columns...).From(repo.rows.Table).
		OrderBy("login").
		Offset(uint64(max(offset, 0))) //nolint:gosec // not negative

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: could not build query: %v", repository.ErrInvalidQuery, err) //nolint:errorlint,lll // prevent err in api
	}

	rows := []userRow{}
	if err = pgxscan.Select(ctx, repo.rows.TxOrConn(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("%w: could not get users: %w", repository.ErrStorage, err)
	}

	users := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, toUser(r))
	}

	return users, nil
}

func (repo *UserPostgresRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	if _, err := uuid.Parse(string(id)); err != nil {
		return domain.User{}, fmt.Errorf("%w: id=%s", repository.ErrNotFound, id)
	}

	r, err := repo.rows.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("could not find user: %w", err)
	}

	return toUser(r), nil
}

func (repo *UserPostgresRepository) FindByLogin(ctx context.Context, login domain.Login) (domain.User, error) {
	sql, args, err := repository.Builder.Select(repo.rows.Columns...).From(repo.rows.Table).
		Where(squirrel.Eq{"login": login}).ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: could not build query: %v", repository.ErrInvalidQuery, err) //nolint:errorlint,lll // prevent err in api
	}

	var r userRow

	err = pgxscan.Get(ctx, repo.rows.TxOrConn(ctx), &r, sql, args...)
	if pgxscan.NotFound(err) {
		return domain.User{}, fmt.Errorf("%w: login=%s", repository.ErrNotFound, login)
	}

	if err != nil {
		return domain.User{}, fmt.Errorf("%w: could not find user: %w", repository.ErrStorage, err)
	}

	return toUser(r), nil
}

func (repo *UserPostgresRepository) ExistsByLogin(ctx context.Context, login domain.Login) (bool, error) {
	sql, args, err := repository.Builder.Select("1").From(repo.rows.Table).Where(squirrel.Eq{"login": login}).
		Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: could not build query: %v", repository.ErrInvalidQuery, err) //nolint:errorlint,lll // prevent err in api
	}

	var exists bool
	if err = pgxscan.Get(ctx, repo.rows.TxOrConn(ctx), &exists, sql, args...); err != nil {
		return false, fmt.Errorf("%w: could not find user: %w", repository.ErrStorage, err)
	}

	return exists, nil
}

func (repo *UserPostgresRepository) Count(ctx context.Context) (int, error) {
	return repo.rows.Count(ctx) //nolint:wrapcheck // no additional context
}

func (repo *UserPostgresRepository) Add(ctx context.Context, user domain.User) error {
	if err := repo.rows.Add(ctx, toUserRow(user)); err != nil {
		return fmt.Errorf("could not add user: %w", err)
	}

	return nil
}

func (repo *UserPostgresRepository) Update(ctx context.Context, user domain.User) error {
	if err := repo.rows.Update(ctx, toUserRow(user)); err != nil {
		return fmt.Errorf("could not update user: %w", err)
	}

	return nil
}

func toUser(r userRow) domain.User {
	return domain.User{
		ID:    r.ID,
		Login: r.Login,
		Name: domain.Name{
			FirstName:   r.FirstName,
			LastName:    r.LastName,
			DisplayName: r.DisplayName,
		},
		PasswordHash: domain.PasswordHash(r.PasswordHash),
		RegisteredAt: r.RegisteredAt.UTC(),
		Active:       toBoolFlag(r.ActiveSince),
		Verified:     toBoolFlag(r.VerifiedSince),
	}
}

func toUserRow(u domain.User) userRow {
	return userRow{
		ID:            u.ID,
		Login:         u.Login,
		FirstName:     u.Name.FirstName,
		LastName:      u.Name.LastName,
		DisplayName:   u.Name.DisplayName,
		PasswordHash:  string(u.PasswordHash),
		RegisteredAt:  u.RegisteredAt,
		ActiveSince:   fromBoolFlag(u.Active),
		VerifiedSince: fromBoolFlag(u.Verified),
	}
}

func toBoolFlag(t *time.Time) domain.BoolFlag {
	if t == nil {
		return domain.FALSE()
	}

	return domain.BoolFlag(t.UTC())
}

func fromBoolFlag(f domain.BoolFlag) *time.Time {
	if f.IsFalse() {
		return nil
	}

	t := f.At()

	return &t
}
