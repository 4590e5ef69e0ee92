package repository_test

import (
	"context"
	"time"

	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
)

var ctx = context.Background()

const (
	adaID     = domain.ID("00000000-0000-0000-0000-000000000001")
	bobID     = domain.ID("00000000-0000-0000-0000-000000000003")
	adaLogin  = domain.Login("ada@example.com")
	bobLogin  = domain.Login("bob@example.com")
	carlLogin = domain.Login("charles@example.com")
)

func newUser(id domain.ID, login domain.Login) domain.User {
	return domain.User{
		ID:           id,
		Login:        login,
		Name:         domain.NewName(string(login), "", ""),
		PasswordHash: "hash",
		RegisteredAt: time.Now().UTC().Truncate(time.Microsecond),
		Active:       domain.TRUE(),
		Verified:     domain.FALSE(),
	}
}

func newSession(userID domain.ID, token string, expiresAt time.Time) domain.Session {
	return domain.Session{
		ID:          domain.SessionID(domain.NewID()),
		UserID:      userID,
		AccessToken: token,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
		ExpiresAt:   expiresAt.UTC().Truncate(time.Microsecond),
		Active:      true,
	}
}
