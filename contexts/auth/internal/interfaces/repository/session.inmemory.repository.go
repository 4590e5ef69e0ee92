package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
	"github.com/go-arrower/bizadmin/repository"
)

func NewSessionMemoryRepository(opts ...repository.Option) *SessionMemoryRepository {
	return &SessionMemoryRepository{
		sessions: repository.NewMemoryRepository[domain.Session, domain.SessionID](opts...),
	}
}

type SessionMemoryRepository struct {
	sessions *repository.MemoryRepository[domain.Session, domain.SessionID]
}

var _ domain.SessionRepository = (*SessionMemoryRepository)(nil)

func (repo *SessionMemoryRepository) FindByAccessToken(ctx context.Context, token string) (domain.Session, error) {
	sessions, err := repo.sessions.All(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("could not find session: %w", err)
	}

	for _, s := range sessions {
		if s.AccessToken == token {
			return s, nil
		}
	}

	return domain.Session{}, fmt.Errorf("%w: session not found", repository.ErrNotFound)
}

func (repo *SessionMemoryRepository) Add(ctx context.Context, session domain.Session) error {
	if err := repo.sessions.Add(ctx, session); err != nil {
		return fmt.Errorf("could not add session: %w", err)
	}

	return nil
}

func (repo *SessionMemoryRepository) Delete(ctx context.Context, session domain.Session) error {
	if err := repo.sessions.Delete(ctx, session); err != nil {
		return fmt.Errorf("could not delete session: %w", err)
	}

	return nil
}

func (repo *SessionMemoryRepository) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	sessions, err := repo.sessions.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not get sessions: %w", err)
	}

	deleted := 0

	for _, s := range sessions {
		if !s.ExpiresAt.Before(before) {
			continue
		}

		if err := repo.sessions.Delete(ctx, s); err != nil {
			return deleted, fmt.Errorf("could not delete session: %w", err)
		}

		deleted++
	}

	return deleted, nil
}
