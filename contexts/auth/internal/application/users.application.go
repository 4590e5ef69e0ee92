package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
	"github.com/go-arrower/bizadmin/jobs"
)

var ErrMissingDependency = errors.New("missing dependency")

// UserApplication holds the use cases to administrate users.
type UserApplication struct {
	CreateUser     app.Request[CreateUserRequest, UserView]
	ActivateUser   app.Request[ActivateUserRequest, ChangeUserStateResponse]
	DeactivateUser app.Request[DeactivateUserRequest, ChangeUserStateResponse]
	ListUsers      app.Query[ListUsersQuery, ListUsersResponse]
	ShowUser       app.Query[ShowUserQuery, UserView]
}

// SessionApplication holds the use cases to log in and out.
type SessionApplication struct {
	LoginUser  app.Request[LoginUserRequest, LoginUserResponse]
	LogoutUser app.Request[LogoutUserRequest, LogoutUserResponse]
}

// UserView is the representation of a User returned by all use cases.
type UserView struct {
	ID           domain.ID  `json:"id"`
	Login        string     `json:"login"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	DisplayName  string     `json:"displayName"`
	RegisteredAt time.Time  `json:"registeredAt"`
	IsActive     bool       `json:"isActive"`
	ActiveSince  *time.Time `json:"activeSince,omitempty"`
	IsVerified   bool       `json:"isVerified"`
}

func toUserView(u domain.User) UserView {
	var since *time.Time
	if u.IsActive() {
		at := u.Active.At()
		since = &at
	}

	return UserView{
		ID:           u.ID,
		Login:        string(u.Login),
		FirstName:    u.Name.FirstName,
		LastName:     u.Name.LastName,
		DisplayName:  u.Name.DisplayName,
		RegisteredAt: u.RegisteredAt,
		IsActive:     u.IsActive(),
		ActiveSince:  since,
		IsVerified:   u.IsVerified(),
	}
}

// notify enqueues the notification as part of the current unit of work,
// so it is only sent once the change is committed.
func notify(ctx context.Context, queue jobs.Enqueuer, usr domain.User, template string) error {
	err := queue.Enqueue(ctx, SendUserNotificationJob{
		Template: template,
		Login:    string(usr.Login),
		Name:     usr.Name.DisplayName,
	})
	if err != nil {
		return fmt.Errorf("could not enqueue %s notification: %w", template, err)
	}

	return nil
}

func missing(handler string, dependency string) *app.DomainError {
	return app.NewValidationError(handler+".Invalid", dependency+" is required").Wrap(ErrMissingDependency)
}
