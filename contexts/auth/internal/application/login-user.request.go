package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-arrower/bizadmin/alog"
	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
	"github.com/go-arrower/bizadmin/repository"
)

type (
	LoginUserRequest struct {
		Email     string `json:"email"    validate:"required,email"`
		Password  string `json:"password" validate:"required,max=1024"` //nolint:gosec // the request carries the password
		UserAgent string `json:"-"`
		IP        string `json:"-"        validate:"omitempty,ip"`
	}
	LoginUserResponse struct {
		UserID      domain.ID `json:"userId"`
		AccessToken string    `json:"accessToken"`
		ExpiresAt   time.Time `json:"expiresAt"`
	}
)

// NewLoginUserRequestHandler starts a new Session for an active User with a matching password.
// All failures return the same error, so it is not revealed whether a login exists.
func NewLoginUserRequestHandler(
	logger alog.Logger,
	users domain.UserRepository,
	sessions domain.SessionRepository,
	uow app.UnitOfWork,
) (app.Request[LoginUserRequest, LoginUserResponse], error) {
	if logger == nil {
		return nil, missing("LoginUserRequestHandler", "logger")
	}

	if users == nil {
		return nil, missing("LoginUserRequestHandler", "user repository")
	}

	if sessions == nil {
		return nil, missing("LoginUserRequestHandler", "session repository")
	}

	if uow == nil {
		return nil, missing("LoginUserRequestHandler", "unit of work")
	}

	return &loginUserRequestHandler{logger: logger, users: users, sessions: sessions, uow: uow}, nil
}

type loginUserRequestHandler struct {
	logger   alog.Logger
	users    domain.UserRepository
	sessions domain.SessionRepository
	uow      app.UnitOfWork
}

func (h *loginUserRequestHandler) H(ctx context.Context, req LoginUserRequest) (LoginUserResponse, error) {
	login := domain.Login(strings.ToLower(strings.TrimSpace(req.Email)))

	usr, err := h.users.FindByLogin(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		return LoginUserResponse{}, h.invalidCredentials(ctx, req, "unknown login")
	}

	if err != nil {
		return LoginUserResponse{}, fmt.Errorf("could not get user: %w", err)
	}

	if !usr.PasswordHash.Matches(req.Password) {
		return LoginUserResponse{}, h.invalidCredentials(ctx, req, "wrong password")
	}

	if !usr.IsActive() {
		return LoginUserResponse{}, h.invalidCredentials(ctx, req, "user not active")
	}

	session, err := domain.NewSession(usr.ID, req.UserAgent)
	if err != nil {
		return LoginUserResponse{}, fmt.Errorf("could not start session: %w", err)
	}

	if err = h.sessions.Add(ctx, session); err != nil {
		return LoginUserResponse{}, fmt.Errorf("could not add session: %w", err)
	}

	if err = app.NewCanceledError(ctx); err != nil {
		return LoginUserResponse{}, err
	}

	if err = h.uow.SaveChanges(ctx); err != nil {
		return LoginUserResponse{}, fmt.Errorf("could not save session: %w", err)
	}

	h.logger.Log(ctx, alog.LevelInfo, "user logged in",
		slog.String("user_id", string(usr.ID)),
		slog.String("device", session.Device.String()),
	)

	return LoginUserResponse{
		UserID:      usr.ID,
		AccessToken: session.AccessToken,
		ExpiresAt:   session.ExpiresAt,
	}, nil
}

func (h *loginUserRequestHandler) invalidCredentials(ctx context.Context, req LoginUserRequest, reason string) error {
	h.logger.Log(ctx, alog.LevelInfo, "login failed",
		slog.String("login", req.Email),
		slog.String("ip", req.IP),
		slog.String("reason", reason),
	)

	return app.NewValidationError("Auth.InvalidCredentials", "invalid email or password")
}
