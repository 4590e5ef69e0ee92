package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/interfaces/repository"
	repository2 "github.com/go-arrower/bizadmin/repository"
)

func TestUserMemoryRepository(t *testing.T) {
	t.Parallel()

	newRepo := func(t *testing.T) *repository.UserMemoryRepository {
		t.Helper()

		repo := repository.NewUserMemoryRepository()
		require.NoError(t, repo.Add(ctx, newUser(domain.NewID(), carlLogin)))
		require.NoError(t, repo.Add(ctx, newUser(adaID, adaLogin)))
		require.NoError(t, repo.Add(ctx, newUser(bobID, bobLogin)))

		return repo
	}

	t.Run("all ordered by login", func(t *testing.T) {
		t.Parallel()

		users, err := newRepo(t).All(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, adaLogin, users[0].Login)
		assert.Equal(t, bobLogin, users[1].Login)
		assert.Equal(t, carlLogin, users[2].Login)
	})

	t.Run("all paged", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)

		users, err := repo.All(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, bobLogin, users[0].Login)

		users, err = repo.All(ctx, 10, 3)
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})

	t.Run("find by login", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)

		usr, err := repo.FindByLogin(ctx, adaLogin)
		require.NoError(t, err)
		assert.Equal(t, adaID, usr.ID)

		_, err = repo.FindByLogin(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, repository2.ErrNotFound)
	})

	t.Run("exists by login", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)

		exists, err := repo.ExistsByLogin(ctx, bobLogin)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByLogin(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("login is unique", func(t *testing.T) {
		t.Parallel()

		err := newRepo(t).Add(ctx, newUser(domain.NewID(), adaLogin))
		assert.ErrorIs(t, err, repository2.ErrAlreadyExists)
	})

	t.Run("update and count", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)

		usr, err := repo.FindByID(ctx, bobID)
		require.NoError(t, err)

		usr.Deactivate()
		require.NoError(t, repo.Update(ctx, usr))

		usr, err = repo.FindByID(ctx, bobID)
		require.NoError(t, err)
		assert.False(t, usr.IsActive())

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("find missing id", func(t *testing.T) {
		t.Parallel()

		_, err := newRepo(t).FindByID(ctx, domain.NewID())
		assert.ErrorIs(t, err, repository2.ErrNotFound)
	})
}

func TestSessionMemoryRepository(t *testing.T) {
	t.Parallel()

	t.Run("find by access token", func(t *testing.T) {
		t.Parallel()

		repo := repository.NewSessionMemoryRepository()
		session := newSession(adaID, "token", time.Now().Add(time.Hour))
		require.NoError(t, repo.Add(ctx, session))

		got, err := repo.FindByAccessToken(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, session, got)

		_, err = repo.FindByAccessToken(ctx, "unknown")
		assert.ErrorIs(t, err, repository2.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		repo := repository.NewSessionMemoryRepository()
		session := newSession(adaID, "token", time.Now().Add(time.Hour))
		require.NoError(t, repo.Add(ctx, session))

		require.NoError(t, repo.Delete(ctx, session))
		require.NoError(t, repo.Delete(ctx, session), "deleting again is not an error")

		_, err := repo.FindByAccessToken(ctx, "token")
		assert.ErrorIs(t, err, repository2.ErrNotFound)
	})

	t.Run("delete expired", func(t *testing.T) {
		t.Parallel()

		repo := repository.NewSessionMemoryRepository()
		require.NoError(t, repo.Add(ctx, newSession(adaID, "valid", time.Now().Add(time.Hour))))
		require.NoError(t, repo.Add(ctx, newSession(adaID, "expired", time.Now().Add(-time.Hour))))

		n, err := repo.DeleteExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = repo.FindByAccessToken(ctx, "valid")
		assert.NoError(t, err)
		_, err = repo.FindByAccessToken(ctx, "expired")
		assert.ErrorIs(t, err, repository2.ErrNotFound)
	})
}
