package app

import (
	"context"
	"errors"
	"fmt"
)

// Kinds of a DomainError. Use errors.Is to check for them.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failed")
	ErrCanceled    = errors.New("request canceled")
)

// DomainError describes why a use case failed.
// Code is a stable, machine-readable identifier, e.g. "EmailType.NotFound",
// Message is meant for humans.
type DomainError struct {
	kind  error
	cause error

	Code    string `json:"code"`
	Message string `json:"message"`
}

var _ error = (*DomainError)(nil)

// NewDomainError returns a DomainError of the given kind.
func NewDomainError(kind error, code string, message string) *DomainError {
	return &DomainError{
		kind:    kind,
		Code:    code,
		Message: message,
	}
}

func NewValidationError(code string, message string) *DomainError {
	return NewDomainError(ErrValidation, code, message)
}

// NewNotFoundError returns an error in the format: <kind>.NotFound, <kind> with id=<id> was not found.
func NewNotFoundError(kind string, id any) *DomainError {
	return NewDomainError(ErrNotFound, kind+".NotFound", fmt.Sprintf("%s with id=%v was not found", kind, id))
}

// NewCanceledError returns an error if ctx is done and nil otherwise.
// Call it before committing changes, so that a canceled request never commits.
func NewCanceledError(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}

	return NewDomainError(ErrCanceled, "Request.Canceled", "the request was canceled").Wrap(ctx.Err())
}

func (e *DomainError) Error() string {
	if e.Message == "" {
		return e.Code
	}

	return e.Code + ": " + e.Message
}

// Is reports whether target is the kind of e.
func (e *DomainError) Is(target error) bool {
	return e.kind != nil && e.kind == target //nolint:errorlint // kinds are sentinels
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

// Kind returns one of ErrValidation, ErrNotFound, ErrPersistence, or ErrCanceled.
// It is nil for errors not created by one of the constructors.
func (e *DomainError) Kind() error {
	return e.kind
}

// Wrap returns a copy of e carrying cause, so errors.Is and errors.As keep working for it.
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{
		kind:    e.kind,
		cause:   cause,
		Code:    e.Code,
		Message: e.Message,
	}
}

// AsDomainError converts any error into a DomainError.
// Errors that are not a DomainError are reported as persistence failures,
// a canceled context as ErrCanceled.
func AsDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}

	var dErr *DomainError
	if errors.As(err, &dErr) {
		return dErr
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewDomainError(ErrCanceled, "Request.Canceled", "the request was canceled").Wrap(err)
	}

	return NewDomainError(ErrPersistence, "Persistence.Failed", "the request could not be completed").Wrap(err)
}
