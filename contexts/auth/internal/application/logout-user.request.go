package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
	"github.com/go-arrower/bizadmin/repository"
)

// NoteAlreadyClosed is returned when logging out a Session that does not exist (anymore).
const NoteAlreadyClosed = "already closed"

type (
	LogoutUserRequest struct {
		AccessToken string `json:"-" validate:"required"`
	}
	LogoutUserResponse struct {
		Closed bool   `json:"closed"`
		Note   string `json:"note,omitempty"`
	}
)

// NewLogoutUserRequestHandler ends a Session by deleting it.
// Logging out twice is not an error, the second call reports NoteAlreadyClosed.
func NewLogoutUserRequestHandler(
	sessions domain.SessionRepository,
	uow app.UnitOfWork,
) (app.Request[LogoutUserRequest, LogoutUserResponse], error) {
	if sessions == nil {
		return nil, missing("LogoutUserRequestHandler", "session repository")
	}

	if uow == nil {
		return nil, missing("LogoutUserRequestHandler", "unit of work")
	}

	return &logoutUserRequestHandler{sessions: sessions, uow: uow}, nil
}

type logoutUserRequestHandler struct {
	sessions domain.SessionRepository
	uow      app.UnitOfWork
}

func (h *logoutUserRequestHandler) H(ctx context.Context, req LogoutUserRequest) (LogoutUserResponse, error) {
	session, err := h.sessions.FindByAccessToken(ctx, req.AccessToken)
	if errors.Is(err, repository.ErrNotFound) {
		return LogoutUserResponse{Closed: false, Note: NoteAlreadyClosed}, nil
	}

	if err != nil {
		return LogoutUserResponse{}, fmt.Errorf("could not get session: %w", err)
	}

	if !session.Active {
		return LogoutUserResponse{Closed: false, Note: NoteAlreadyClosed}, nil
	}

	if err = h.sessions.Delete(ctx, session); err != nil {
		return LogoutUserResponse{}, fmt.Errorf("could not delete session: %w", err)
	}

	if err = app.NewCanceledError(ctx); err != nil {
		return LogoutUserResponse{}, err
	}

	if err = h.uow.SaveChanges(ctx); err != nil {
		return LogoutUserResponse{}, fmt.Errorf("could not save session: %w", err)
	}

	return LogoutUserResponse{Closed: true}, nil
}
