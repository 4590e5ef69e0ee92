package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
	"github.com/go-arrower/bizadmin/repository"
)

// sessionRow keeps the user agent in device, the Device is derived from it.
type sessionRow struct {
	ID          domain.SessionID
	UserID      domain.ID
	AccessToken string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Active      bool
	Device      string
}

func NewSessionPostgresRepository(pgx *pgxpool.Pool) *SessionPostgresRepository {
	return &SessionPostgresRepository{
		rows: repository.NewPostgresRepository[sessionRow, domain.SessionID](pgx,
			repository.WithTable(TableSession),
			repository.WithOrderBy("created_at", "id"),
		),
	}
}

type SessionPostgresRepository struct {
	rows *repository.PostgresRepository[sessionRow, domain.SessionID]
}

var _ domain.SessionRepository = (*SessionPostgresRepository)(nil)

func (repo *SessionPostgresRepository) FindByAccessToken(ctx context.Context, token string) (domain.Session, error) {
	sql, args, err := repository.Builder.Select(repo.rows.Columns...).From(repo.rows.Table).
		Where(squirrel.Eq{"access_token": token}).ToSql()
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: could not build query: %v", repository.ErrInvalidQuery, err) //nolint:errorlint,lll // prevent err in api
	}

	var r sessionRow

	err = pgxscan.Get(ctx, repo.rows.TxOrConn(ctx), &r, sql, args...)
	if pgxscan.NotFound(err) {
		return domain.Session{}, fmt.Errorf("%w: session not found", repository.ErrNotFound)
	}

	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: could not find session: %w", repository.ErrStorage, err)
	}

	return toSession(r), nil
}

func (repo *SessionPostgresRepository) Add(ctx context.Context, session domain.Session) error {
	if err := repo.rows.Add(ctx, toSessionRow(session)); err != nil {
		return fmt.Errorf("could not add session: %w", err)
	}

	return nil
}

func (repo *SessionPostgresRepository) Delete(ctx context.Context, session domain.Session) error {
	if err := repo.rows.Delete(ctx, toSessionRow(session)); err != nil {
		return fmt.Errorf("could not delete session: %w", err)
	}

	return nil
}

func (repo *SessionPostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	sql, args, err := repository.Builder.Delete(repo.rows.Table).Where(squirrel.Lt{"expires_at": before}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: could not build query: %v", repository.ErrInvalidQuery, err) //nolint:errorlint,lll // prevent err in api
	}

	tag, err := repo.rows.TxOrConn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: could not delete sessions: %w", repository.ErrSaveFailed, err)
	}

	return int(tag.RowsAffected()), nil
}

func toSession(r sessionRow) domain.Session {
	return domain.Session{
		ID:          r.ID,
		UserID:      r.UserID,
		AccessToken: r.AccessToken,
		CreatedAt:   r.CreatedAt.UTC(),
		ExpiresAt:   r.ExpiresAt.UTC(),
		Active:      r.Active,
		Device:      domain.NewDevice(r.Device),
	}
}

func toSessionRow(s domain.Session) sessionRow {
	return sessionRow{
		ID:          s.ID,
		UserID:      s.UserID,
		AccessToken: s.AccessToken,
		CreatedAt:   s.CreatedAt,
		ExpiresAt:   s.ExpiresAt,
		Active:      s.Active,
		Device:      s.Device.UserAgent,
	}
}
