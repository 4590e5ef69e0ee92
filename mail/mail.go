// Package mail sends emails, via AWS SES in production or into the log for local development.
package mail

import (
	"context"
	"errors"
)

var (
	ErrSendFailed     = errors.New("could not send email")
	ErrInvalidMessage = errors.New("invalid email")
)

// Message is a single email to one recipient.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
	// Tags are attached to the email at the provider, e.g. to track notifications by type.
	Tags map[string]string
}

func (m Message) validate() error {
	if m.To == "" {
		return errors.Join(ErrInvalidMessage, errors.New("missing recipient"))
	}

	if m.Subject == "" {
		return errors.Join(ErrInvalidMessage, errors.New("missing subject"))
	}

	if m.Text == "" && m.HTML == "" {
		return errors.Join(ErrInvalidMessage, errors.New("missing body"))
	}

	return nil
}

type SendResult struct {
	MessageID string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) (SendResult, error)
}

// From is the sender address of all emails.
type From struct {
	Address string
	Name    string
}

func (f From) String() string {
	if f.Name == "" {
		return f.Address
	}

	return f.Name + " <" + f.Address + ">"
}
