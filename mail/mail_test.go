package mail_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/bizadmin/alog"
	"github.com/go-arrower/bizadmin/mail"
)

var (
	ctx  = context.Background()
	from = mail.From{Address: "noreply@example.com", Name: "Bizadmin"}
)

func TestFrom_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Bizadmin <noreply@example.com>", from.String())
	assert.Equal(t, "noreply@example.com", mail.From{Address: "noreply@example.com"}.String())
}

func TestSESSender_Send(t *testing.T) {
	t.Parallel()

	t.Run("send", func(t *testing.T) {
		t.Parallel()

		client := &fakeSES{}
		sender := mail.NewSESSenderWithClient(client, from)

		res, err := sender.Send(ctx, mail.Message{
			To:      "user@example.com",
			Subject: "Hello",
			Text:    "Text",
			Tags:    map[string]string{"notification": "welcome", "app": "bizadmin"},
		})
		require.NoError(t, err)
		assert.Equal(t, "msg-0", res.MessageID)

		in := client.input
		assert.Equal(t, "Bizadmin <noreply@example.com>", aws.ToString(in.FromEmailAddress))
		assert.Equal(t, []string{"user@example.com"}, in.Destination.ToAddresses)
		assert.Equal(t, "Hello", aws.ToString(in.Content.Simple.Subject.Data))
		assert.Equal(t, "Text", aws.ToString(in.Content.Simple.Body.Text.Data))
		assert.Nil(t, in.Content.Simple.Body.Html)
		assert.Len(t, in.EmailTags, 2)
		assert.Equal(t, "app", aws.ToString(in.EmailTags[0].Name), "tags are sorted")
	})

	t.Run("invalid message", func(t *testing.T) {
		t.Parallel()

		client := &fakeSES{}
		sender := mail.NewSESSenderWithClient(client, from)

		_, err := sender.Send(ctx, mail.Message{To: "user@example.com"})
		assert.ErrorIs(t, err, mail.ErrInvalidMessage)
		assert.Nil(t, client.input, "nothing is sent")
	})

	t.Run("ses fails", func(t *testing.T) {
		t.Parallel()

		sender := mail.NewSESSenderWithClient(&fakeSES{err: errors.New("throttled")}, from)

		_, err := sender.Send(ctx, mail.Message{To: "user@example.com", Subject: "s", HTML: "<p>h</p>"})
		assert.ErrorIs(t, err, mail.ErrSendFailed)
	})
}

func TestLogSender_Send(t *testing.T) {
	t.Parallel()

	logger := alog.Test(t)
	sender := mail.NewLogSender(logger, from)

	res, err := sender.Send(ctx, mail.Message{To: "user@example.com", Subject: "Hello", Text: "Text"})
	assert.NoError(t, err)
	assert.NotEmpty(t, res.MessageID)

	logger.Contains("email sent")
	logger.Contains("to=user@example.com")
	logger.Contains(res.MessageID)
}

func TestTemplates_Render(t *testing.T) {
	t.Parallel()

	templates, err := mail.NewTemplates()
	require.NoError(t, err)

	data := mail.TemplateData{
		Organisation: "ACME",
		Application:  "Bizadmin",
		Name:         "Ana",
		Login:        "ana@example.com",
	}

	t.Run("all notifications", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{mail.TemplateWelcome, mail.TemplateActivated, mail.TemplateDeactivated} {
			msg, err := templates.Render(name, "ana@example.com", data)
			require.NoError(t, err)

			assert.Equal(t, "ana@example.com", msg.To)
			assert.Contains(t, msg.Subject, "Bizadmin")
			assert.Contains(t, msg.Text, "Hello Ana")
			assert.Contains(t, msg.Text, "ana@example.com")
			assert.Equal(t, name, msg.Tags["notification"])
		}
	})

	t.Run("unknown template", func(t *testing.T) {
		t.Parallel()

		_, err := templates.Render("unknown", "ana@example.com", data)
		assert.ErrorIs(t, err, mail.ErrUnknownTemplate)
	})
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.input = in

	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-0")}, nil
}
