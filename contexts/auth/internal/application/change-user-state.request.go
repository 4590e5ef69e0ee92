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

type (
	ActivateUserRequest struct {
		UserID domain.ID `json:"userId" validate:"required"`
	}
	DeactivateUserRequest struct {
		UserID domain.ID `json:"userId" validate:"required"`
	}
	ChangeUserStateResponse struct {
		UserID   domain.ID `json:"userId"`
		IsActive bool      `json:"isActive"`
	}
)

func NewActivateUserRequestHandler(
	users domain.UserRepository,
	uow app.UnitOfWork,
	queue jobs.Enqueuer,
) (app.Request[ActivateUserRequest, ChangeUserStateResponse], error) {
	if err := requireUserDeps("ActivateUserRequestHandler", users, uow, queue); err != nil {
		return nil, err
	}

	return &activateUserRequestHandler{users: users, uow: uow, queue: queue}, nil
}

type activateUserRequestHandler struct {
	users domain.UserRepository
	uow   app.UnitOfWork
	queue jobs.Enqueuer
}

func (h *activateUserRequestHandler) H(ctx context.Context, req ActivateUserRequest) (ChangeUserStateResponse, error) {
	return changeUserState(ctx, h.users, h.uow, h.queue, req.UserID, true)
}

func NewDeactivateUserRequestHandler(
	users domain.UserRepository,
	uow app.UnitOfWork,
	queue jobs.Enqueuer,
) (app.Request[DeactivateUserRequest, ChangeUserStateResponse], error) {
	if err := requireUserDeps("DeactivateUserRequestHandler", users, uow, queue); err != nil {
		return nil, err
	}

	return &deactivateUserRequestHandler{users: users, uow: uow, queue: queue}, nil
}

type deactivateUserRequestHandler struct {
	users domain.UserRepository
	uow   app.UnitOfWork
	queue jobs.Enqueuer
}

func (h *deactivateUserRequestHandler) H(ctx context.Context, req DeactivateUserRequest) (ChangeUserStateResponse, error) { //nolint:lll
	return changeUserState(ctx, h.users, h.uow, h.queue, req.UserID, false)
}

// changeUserState commits the new state of the User. Only an actual change notifies the User,
// an already active User is not activated again.
func changeUserState(
	ctx context.Context,
	users domain.UserRepository,
	uow app.UnitOfWork,
	queue jobs.Enqueuer,
	id domain.ID,
	activate bool,
) (ChangeUserStateResponse, error) {
	usr, err := users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ChangeUserStateResponse{}, app.NewNotFoundError("User", id).Wrap(err)
	}

	if err != nil {
		return ChangeUserStateResponse{}, fmt.Errorf("could not get user: %w", err)
	}

	changed := usr.IsActive() != activate
	template := mail.TemplateDeactivated

	if activate {
		usr.Activate()
		template = mail.TemplateActivated
	} else {
		usr.Deactivate()
	}

	if err = users.Update(ctx, usr); err != nil {
		return ChangeUserStateResponse{}, fmt.Errorf("could not update user: %w", err)
	}

	if changed {
		if err = notify(ctx, queue, usr, template); err != nil {
			return ChangeUserStateResponse{}, err
		}
	}

	if err = app.NewCanceledError(ctx); err != nil {
		return ChangeUserStateResponse{}, err
	}

	if err = uow.SaveChanges(ctx); err != nil {
		return ChangeUserStateResponse{}, fmt.Errorf("could not save user: %w", err)
	}

	return ChangeUserStateResponse{UserID: usr.ID, IsActive: usr.IsActive()}, nil
}

func requireUserDeps(handler string, users domain.UserRepository, uow app.UnitOfWork, queue jobs.Enqueuer) error {
	if users == nil {
		return missing(handler, "user repository")
	}

	if uow == nil {
		return missing(handler, "unit of work")
	}

	if queue == nil {
		return missing(handler, "queue")
	}

	return nil
}
