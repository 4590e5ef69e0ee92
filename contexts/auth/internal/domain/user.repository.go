package domain

import (
	"context"
	"time"
)

// UserRepository manages the data access to the underlying User implementation.
// Lookups of a missing User return an error wrapping repository.ErrNotFound.
type UserRepository interface {
	// All returns the Users ordered by Login, skipping offset and returning at most limit.
	// A limit of zero returns all.
	All(ctx context.Context, limit int, offset int) ([]User, error)
	FindByID(ctx context.Context, id ID) (User, error)
	FindByLogin(ctx context.Context, login Login) (User, error)
	ExistsByLogin(ctx context.Context, login Login) (bool, error)
	Count(ctx context.Context) (int, error)

	Add(ctx context.Context, user User) error
	Update(ctx context.Context, user User) error
}

// SessionRepository manages the Sessions of all Users.
type SessionRepository interface {
	FindByAccessToken(ctx context.Context, token string) (Session, error)
	Add(ctx context.Context, session Session) error
	Delete(ctx context.Context, session Session) error
	// DeleteExpired removes all Sessions expired before and returns how many.
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}
