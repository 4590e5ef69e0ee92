package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-arrower/bizadmin/alog"
	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
	"github.com/go-arrower/bizadmin/mail"
)

type (
	// SendUserNotificationJob carries everything needed to render the email,
	// so it does not depend on the state of the User when it is processed.
	SendUserNotificationJob struct {
		Template string `json:"template" validate:"required"`
		Login    string `json:"login"    validate:"required,email"`
		Name     string `json:"name"`
	}

	PruneExpiredSessionsJob struct{}
)

// Branding is shown in all notifications.
type Branding struct {
	Organisation string
	Application  string
}

func NewSendUserNotificationJobHandler(
	sender mail.Sender,
	templates *mail.Templates,
	branding Branding,
) (app.Job[SendUserNotificationJob], error) {
	if sender == nil {
		return nil, missing("SendUserNotificationJobHandler", "sender")
	}

	if templates == nil {
		return nil, missing("SendUserNotificationJobHandler", "templates")
	}

	return &sendUserNotificationJobHandler{sender: sender, templates: templates, branding: branding}, nil
}

type sendUserNotificationJobHandler struct {
	sender    mail.Sender
	templates *mail.Templates
	branding  Branding
}

func (h *sendUserNotificationJobHandler) H(ctx context.Context, job SendUserNotificationJob) error {
	name := job.Name
	if name == "" {
		name = job.Login
	}

	msg, err := h.templates.Render(job.Template, job.Login, mail.TemplateData{
		Organisation: h.branding.Organisation,
		Application:  h.branding.Application,
		Name:         name,
		Login:        job.Login,
	})
	if err != nil {
		return fmt.Errorf("could not render notification: %w", err)
	}

	if _, err = h.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("could not send notification: %w", err)
	}

	return nil
}

func NewPruneExpiredSessionsJobHandler(
	logger alog.Logger,
	sessions domain.SessionRepository,
) (app.Job[PruneExpiredSessionsJob], error) {
	if logger == nil {
		return nil, missing("PruneExpiredSessionsJobHandler", "logger")
	}

	if sessions == nil {
		return nil, missing("PruneExpiredSessionsJobHandler", "session repository")
	}

	return &pruneExpiredSessionsJobHandler{logger: logger, sessions: sessions}, nil
}

type pruneExpiredSessionsJobHandler struct {
	logger   alog.Logger
	sessions domain.SessionRepository
}

func (h *pruneExpiredSessionsJobHandler) H(ctx context.Context, _ PruneExpiredSessionsJob) error {
	n, err := h.sessions.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("could not prune sessions: %w", err)
	}

	if n > 0 {
		h.logger.Log(ctx, alog.LevelInfo, "pruned expired sessions", slog.Int("count", n))
	}

	return nil
}
