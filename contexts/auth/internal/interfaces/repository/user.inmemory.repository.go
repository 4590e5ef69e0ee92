// Package repository persists the users and sessions of auth in memory or in postgres.
package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
	"github.com/go-arrower/bizadmin/repository"
)

// NewUserMemoryRepository keeps all users in memory.
// Pass repository.WithStore to keep them across restarts.
func NewUserMemoryRepository(opts ...repository.Option) *UserMemoryRepository {
	return &UserMemoryRepository{
		users: repository.NewMemoryRepository[domain.User, domain.ID](opts...),
	}
}

type UserMemoryRepository struct {
	users *repository.MemoryRepository[domain.User, domain.ID]
}

var _ domain.UserRepository = (*UserMemoryRepository)(nil)

func (repo *UserMemoryRepository) All(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	users, err := repo.users.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get all users: %w", err)
	}

	slices.SortFunc(users, func(a, b domain.User) int {
		return strings.Compare(string(a.Login), string(b.Login))
	})

	if offset >= len(users) {
		return []domain.User{}, nil
	}

	users = users[offset:]

	if limit > 0 && limit < len(users) {
		users = users[:limit]
	}

	return users, nil
}

func (repo *UserMemoryRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	user, err := repo.users.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("could not find user: %w", err)
	}

	return user, nil
}

func (repo *UserMemoryRepository) FindByLogin(ctx context.Context, login domain.Login) (domain.User, error) {
	users, err := repo.users.All(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("could not find user: %w", err)
	}

	for _, u := range users {
		if u.Login == login {
			return u, nil
		}
	}

	return domain.User{}, fmt.Errorf("%w: login=%s", repository.ErrNotFound, login)
}

func (repo *UserMemoryRepository) ExistsByLogin(ctx context.Context, login domain.Login) (bool, error) {
	users, err := repo.users.All(ctx)
	if err != nil {
		return false, fmt.Errorf("could not find user: %w", err)
	}

	return slices.ContainsFunc(users, func(u domain.User) bool { return u.Login == login }), nil
}

func (repo *UserMemoryRepository) Count(ctx context.Context) (int, error) {
	return repo.users.Count(ctx) //nolint:wrapcheck // no additional context
}

func (repo *UserMemoryRepository) Add(ctx context.Context, user domain.User) error {
	if exists, _ := repo.ExistsByLogin(ctx, user.Login); exists {
		return fmt.Errorf("%w: login=%s", repository.ErrAlreadyExists, user.Login)
	}

	if err := repo.users.Add(ctx, user); err != nil {
		return fmt.Errorf("could not add user: %w", err)
	}

	return nil
}

func (repo *UserMemoryRepository) Update(ctx context.Context, user domain.User) error {
	if err := repo.users.Update(ctx, user); err != nil {
		return fmt.Errorf("could not update user: %w", err)
	}

	return nil
}
