package mail

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"
)

var ErrUnknownTemplate = errors.New("unknown email template")

// Template names of the user notifications.
const (
	TemplateWelcome     = "welcome"
	TemplateActivated   = "activated"
	TemplateDeactivated = "deactivated"
)

type mailTemplate struct {
	subject string
	text    string
}

//nolint:gochecknoglobals // fixed set of notifications
var userTemplates = map[string]mailTemplate{
	TemplateWelcome: {
		subject: `Welcome to {{ .Application }}`,
		text: `Hello {{ .Name }},

your account {{ .Login }} has been created.
You can log in right away.

{{ .Organisation }}`,
	},
	TemplateActivated: {
		subject: `Your {{ .Application }} account is active`,
		text: `Hello {{ .Name }},

your account {{ .Login }} has been activated. You can log in again.

{{ .Organisation }}`,
	},
	TemplateDeactivated: {
		subject: `Your {{ .Application }} account has been deactivated`,
		text: `Hello {{ .Name }},

your account {{ .Login }} has been deactivated. You can no longer log in.
If you think this is a mistake, contact your administrator.

{{ .Organisation }}`,
	},
}

// TemplateData is available in all templates.
type TemplateData struct {
	Organisation string
	Application  string
	Name         string
	Login        string
}

// Templates renders the user notifications.
type Templates struct {
	subjects *template.Template
	texts    *template.Template
}

func NewTemplates() (*Templates, error) {
	t := &Templates{
		subjects: template.New("subjects").Option("missingkey=error"),
		texts:    template.New("texts").Option("missingkey=error"),
	}

	for name, tmpl := range userTemplates {
		if _, err := t.subjects.New(name).Parse(tmpl.subject); err != nil {
			return nil, fmt.Errorf("could not parse subject of %s: %w", name, err)
		}

		if _, err := t.texts.New(name).Parse(tmpl.text); err != nil {
			return nil, fmt.Errorf("could not parse text of %s: %w", name, err)
		}
	}

	return t, nil
}

// Render returns the message of template name for recipient to.
func (t *Templates) Render(name string, to string, data TemplateData) (Message, error) {
	if t.subjects.Lookup(name) == nil {
		return Message{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	subject := &bytes.Buffer{}
	if err := t.subjects.ExecuteTemplate(subject, name, data); err != nil {
		return Message{}, fmt.Errorf("could not render subject of %s: %w", name, err)
	}

	text := &bytes.Buffer{}
	if err := t.texts.ExecuteTemplate(text, name, data); err != nil {
		return Message{}, fmt.Errorf("could not render text of %s: %w", name, err)
	}

	return Message{
		To:      to,
		Subject: subject.String(),
		Text:    text.String(),
		Tags:    map[string]string{"notification": name},
	}, nil
}
