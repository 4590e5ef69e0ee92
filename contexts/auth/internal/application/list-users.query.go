package application

import (
	"context"
	"fmt"

	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
)

const defaultPageSize = 50

type (
	ListUsersQuery struct {
		Limit  int `query:"limit"  validate:"min=0,max=1000"`
		Offset int `query:"offset" validate:"min=0"`
	}
	ListUsersResponse struct {
		Users []UserView `json:"users"`
		Total int        `json:"total"`
	}
)

// NewListUsersQueryHandler returns one page of Users ordered by login.
// Total is the number of all Users, independent of the page.
func NewListUsersQueryHandler(users domain.UserRepository) (app.Query[ListUsersQuery, ListUsersResponse], error) {
	if users == nil {
		return nil, missing("ListUsersQueryHandler", "user repository")
	}

	return &listUsersQueryHandler{users: users}, nil
}

type listUsersQueryHandler struct {
	users domain.UserRepository
}

func (h *listUsersQueryHandler) H(ctx context.Context, query ListUsersQuery) (ListUsersResponse, error) {
	limit := query.Limit
	if limit == 0 {
		limit = defaultPageSize
	}

	all, err := h.users.All(ctx, limit, query.Offset)
	if err != nil {
		return ListUsersResponse{}, fmt.Errorf("could not list users: %w", err)
	}

	total, err := h.users.Count(ctx)
	if err != nil {
		return ListUsersResponse{}, fmt.Errorf("could not count users: %w", err)
	}

	views := make([]UserView, 0, len(all))
	for _, u := range all {
		views = append(views, toUserView(u))
	}

	return ListUsersResponse{Users: views, Total: total}, nil
}
