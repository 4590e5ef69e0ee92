package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
	"github.com/go-arrower/bizadmin/repository"
)

type ShowUserQuery struct {
	UserID domain.ID `param:"id" validate:"required"`
}

func NewShowUserQueryHandler(users domain.UserRepository) (app.Query[ShowUserQuery, UserView], error) {
	if users == nil {
		return nil, missing("ShowUserQueryHandler", "user repository")
	}

	return &showUserQueryHandler{users: users}, nil
}

type showUserQueryHandler struct {
	users domain.UserRepository
}

func (h *showUserQueryHandler) H(ctx context.Context, query ShowUserQuery) (UserView, error) {
	usr, err := h.users.FindByID(ctx, query.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return UserView{}, app.NewNotFoundError("User", query.UserID).Wrap(err)
	}

	if err != nil {
		return UserView{}, fmt.Errorf("could not get user: %w", err)
	}

	return toUserView(usr), nil
}
