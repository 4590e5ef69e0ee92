package application_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/bizadmin/alog"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/application"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/interfaces/repository"
	"github.com/go-arrower/bizadmin/mail"
)

func TestSendUserNotificationJobHandler_H(t *testing.T) {
	t.Parallel()

	templates, err := mail.NewTemplates()
	require.NoError(t, err)

	branding := application.Branding{Organisation: "ACME", Application: "bizadmin"}

	t.Run("send", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{}
		handler, _ := application.NewSendUserNotificationJobHandler(sender, templates, branding)

		err := handler.H(ctx, application.SendUserNotificationJob{Template: mail.TemplateDeactivated, Login: adaLogin})
		require.NoError(t, err)

		require.Len(t, sender.sent(), 1)
		msg := sender.sent()[0]
		assert.Equal(t, adaLogin, msg.To)
		assert.Equal(t, "Your bizadmin account has been deactivated", msg.Subject)
		assert.Contains(t, msg.Text, "Hello "+adaLogin)
		assert.Contains(t, msg.Text, "ACME")
		assert.Equal(t, mail.TemplateDeactivated, msg.Tags["notification"])
	})

	t.Run("unknown template", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{}
		handler, _ := application.NewSendUserNotificationJobHandler(sender, templates, branding)

		err := handler.H(ctx, application.SendUserNotificationJob{Template: "unknown", Login: adaLogin})
		assert.ErrorIs(t, err, mail.ErrUnknownTemplate)
		assert.Empty(t, sender.sent())
	})

	t.Run("sender fails", func(t *testing.T) {
		t.Parallel()

		sender := &fakeSender{err: mail.ErrSendFailed}
		handler, _ := application.NewSendUserNotificationJobHandler(sender, templates, branding)

		err := handler.H(ctx, application.SendUserNotificationJob{Template: mail.TemplateWelcome, Login: adaLogin})
		assert.ErrorIs(t, err, mail.ErrSendFailed)
	})
}

func TestPruneExpiredSessionsJobHandler_H(t *testing.T) {
	t.Parallel()

	t.Run("prune", func(t *testing.T) {
		t.Parallel()

		logger := alog.Test(t)
		sessions, valid := newActiveSession(t, domain.NewID())

		expired, _ := domain.NewSession(domain.NewID(), "")
		expired.ExpiresAt = time.Now().Add(-time.Minute)
		require.NoError(t, sessions.Add(ctx, expired))

		handler, _ := application.NewPruneExpiredSessionsJobHandler(logger, sessions)

		require.NoError(t, handler.H(ctx, application.PruneExpiredSessionsJob{}))

		_, err := sessions.FindByAccessToken(ctx, valid.AccessToken)
		assert.NoError(t, err)
		_, err = sessions.FindByAccessToken(ctx, expired.AccessToken)
		assert.Error(t, err)
		logger.Contains("pruned expired sessions")
		logger.Contains("count=1")
	})

	t.Run("nothing to prune", func(t *testing.T) {
		t.Parallel()

		logger := alog.Test(t)
		handler, _ := application.NewPruneExpiredSessionsJobHandler(logger, repository.NewSessionMemoryRepository())

		require.NoError(t, handler.H(ctx, application.PruneExpiredSessionsJob{}))
		logger.Empty()
	})

	t.Run("repository fails", func(t *testing.T) {
		t.Parallel()

		handler, _ := application.NewPruneExpiredSessionsJobHandler(alog.NewNoop(), failingSessions{})

		assert.ErrorIs(t, handler.H(ctx, application.PruneExpiredSessionsJob{}), errRepo)
	})
}
