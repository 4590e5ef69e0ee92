package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
	"github.com/go-arrower/bizadmin/jobs"
	"github.com/go-arrower/bizadmin/mail"
	"github.com/go-arrower/bizadmin/repository"
)

type CreateUserRequest struct {
	Email       string `json:"email"       validate:"required,email,max=1024"`
	Password    string `json:"password"    validate:"required,max=1024"` //nolint:gosec // the request carries the password
	FirstName   string `json:"firstName"   validate:"max=256"`
	LastName    string `json:"lastName"    validate:"max=256"`
	DisplayName string `json:"displayName" validate:"max=256"`
}

// NewCreateUserRequestHandler registers a new active User and welcomes it by email.
func NewCreateUserRequestHandler(
	users domain.UserRepository,
	uow app.UnitOfWork,
	queue jobs.Enqueuer,
) (app.Request[CreateUserRequest, UserView], error) {
	if users == nil {
		return nil, missing("CreateUserRequestHandler", "user repository")
	}

	if uow == nil {
		return nil, missing("CreateUserRequestHandler", "unit of work")
	}

	if queue == nil {
		return nil, missing("CreateUserRequestHandler", "queue")
	}

	return &createUserRequestHandler{users: users, uow: uow, queue: queue}, nil
}

type createUserRequestHandler struct {
	users domain.UserRepository
	uow   app.UnitOfWork
	queue jobs.Enqueuer
}

func (h *createUserRequestHandler) H(ctx context.Context, req CreateUserRequest) (UserView, error) {
	usr, err := domain.NewUser(req.Email, req.Password, domain.NewName(req.FirstName, req.LastName, req.DisplayName))
	if errors.Is(err, domain.ErrInvalidUserDetails) {
		return UserView{}, app.NewValidationError("User.Invalid", err.Error()).Wrap(err)
	}

	if err != nil {
		return UserView{}, fmt.Errorf("could not create user: %w", err)
	}

	exists, err := h.users.ExistsByLogin(ctx, usr.Login)
	if err != nil {
		return UserView{}, fmt.Errorf("could not check login: %w", err)
	}

	if exists {
		return UserView{}, errUserAlreadyExists()
	}

	err = h.users.Add(ctx, usr)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return UserView{}, errUserAlreadyExists().Wrap(err)
	}

	if err != nil {
		return UserView{}, fmt.Errorf("could not add user: %w", err)
	}

	if err = notify(ctx, h.queue, usr, mail.TemplateWelcome); err != nil {
		return UserView{}, err
	}

	if err = app.NewCanceledError(ctx); err != nil {
		return UserView{}, err
	}

	if err = h.uow.SaveChanges(ctx); err != nil {
		return UserView{}, fmt.Errorf("could not save user: %w", err)
	}

	return toUserView(usr), nil
}

func errUserAlreadyExists() *app.DomainError {
	return app.NewValidationError("User.AlreadyExists", "a user with this email already exists")
}
