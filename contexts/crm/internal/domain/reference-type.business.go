// Package domain contains the reference data of the crm: address types, email types,
// phone types, titles, modules, and social media types.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxNameLength        = 256
	MaxDescriptionLength = 1024
)

var (
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidDescription = errors.New("invalid description")
)

// TypeID is a uuid version 7, so ids sort by the time they were created.
type TypeID string

func NewTypeID() TypeID {
	return TypeID(uuid.Must(uuid.NewV7()).String())
}

// ReferenceType is the shared state of all kinds of reference data.
// Reference types are never deleted, they are deactivated instead.
type ReferenceType struct {
	ID          TypeID
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
}

func newReferenceType(name string, description string) (ReferenceType, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	if name == "" {
		return ReferenceType{}, fmt.Errorf("%w: name is required", ErrInvalidName)
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return ReferenceType{}, fmt.Errorf("%w: name is longer than %d characters", ErrInvalidName, MaxNameLength)
	}

	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return ReferenceType{}, fmt.Errorf("%w: description is longer than %d characters",
			ErrInvalidDescription, MaxDescriptionLength)
	}

	return ReferenceType{
		ID:          NewTypeID(),
		Name:        name,
		Description: description,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Activate is a noop if t is active already.
func (t *ReferenceType) Activate() {
	t.Active = true
}

// Deactivate is a noop if t is inactive already.
func (t *ReferenceType) Deactivate() {
	t.Active = false
}

func (t *ReferenceType) IsActive() bool {
	return t.Active
}

// Base gives generic code access to the embedded ReferenceType of a kind.
func (t *ReferenceType) Base() *ReferenceType {
	return t
}

// Entity is satisfied by the pointer of each kind, e.g. *EmailType.
// It allows handlers to be written once and instantiated for every kind.
type Entity[E any] interface {
	*E

	Base() *ReferenceType
	Kind() string
}
