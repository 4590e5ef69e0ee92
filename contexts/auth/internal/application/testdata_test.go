package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/interfaces/repository"
	"github.com/go-arrower/bizadmin/mail"
	repository2 "github.com/go-arrower/bizadmin/repository"
)

var (
	ctx = context.Background()

	errRepo = errors.New("repository failed")
)

const (
	rawPassword = "0Secret!"
	adaLogin    = "ada@example.com"
)

// newUsers returns a repository with one active User.
func newUsers(t *testing.T) (*repository.UserMemoryRepository, domain.User) {
	t.Helper()

	usr, err := domain.NewUser(adaLogin, rawPassword, domain.NewName("ada", "lovelace", ""))
	require.NoError(t, err)

	users := repository.NewUserMemoryRepository()
	require.NoError(t, users.Add(ctx, usr))

	return users, usr
}

func newActiveSession(t *testing.T, userID domain.ID) (*repository.SessionMemoryRepository, domain.Session) {
	t.Helper()

	session, err := domain.NewSession(userID, "")
	require.NoError(t, err)

	sessions := repository.NewSessionMemoryRepository()
	require.NoError(t, sessions.Add(ctx, session))

	return sessions, session
}

// fakeSender records all sent messages.
type fakeSender struct {
	mu   sync.Mutex
	msgs []mail.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg mail.Message) (mail.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return mail.SendResult{}, s.err
	}

	s.msgs = append(s.msgs, msg)

	return mail.SendResult{MessageID: "id"}, nil
}

func (s *fakeSender) sent() []mail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]mail.Message{}, s.msgs...)
}

// failingUsers fails on every call.
type failingUsers struct{}

func (failingUsers) All(context.Context, int, int) ([]domain.User, error) { return nil, errRepo }
func (failingUsers) FindByID(context.Context, domain.ID) (domain.User, error) {
	return domain.User{}, errRepo
}
func (failingUsers) FindByLogin(context.Context, domain.Login) (domain.User, error) {
	return domain.User{}, errRepo
}
func (failingUsers) ExistsByLogin(context.Context, domain.Login) (bool, error) { return false, errRepo }
func (failingUsers) Count(context.Context) (int, error)                        { return 0, errRepo }
func (failingUsers) Add(context.Context, domain.User) error                    { return errRepo }
func (failingUsers) Update(context.Context, domain.User) error                 { return errRepo }

// failingSessions fails on every call.
type failingSessions struct{}

func (failingSessions) FindByAccessToken(context.Context, string) (domain.Session, error) {
	return domain.Session{}, errRepo
}
func (failingSessions) Add(context.Context, domain.Session) error    { return errRepo }
func (failingSessions) Delete(context.Context, domain.Session) error { return errRepo }
func (failingSessions) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, errRepo
}

// unsavableUsers stages a failing change before every Update,
// so SaveChanges of a MemoryUnitOfWork fails and applies nothing of the request.
type unsavableUsers struct {
	*repository.UserMemoryRepository
}

func (u unsavableUsers) Update(ctx context.Context, usr domain.User) error {
	if err := repository2.Stage(ctx, func() error { return errRepo }); err != nil {
		return err
	}

	return u.UserMemoryRepository.Update(ctx, usr)
}
