package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

var (
	ErrInvalidUserDetails = errors.New("invalid user details")
	ErrWeakPassword       = fmt.Errorf("%w: password is too weak", ErrInvalidUserDetails)
)

// NewUser registers a new User. It is active right away and not verified.
func NewUser(login string, password string, name Name) (User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return User{}, fmt.Errorf("%w: missing login", ErrInvalidUserDetails)
	}

	if _, err := mail.ParseAddress(login); err != nil {
		return User{}, fmt.Errorf("%w: invalid email address: %v", ErrInvalidUserDetails, err) //nolint:errorlint,lll // prevent err in api
	}

	pwHash, err := NewStrongPasswordHash(password)
	if err != nil {
		return User{}, err
	}

	return User{
		ID:           NewID(),
		Login:        Login(strings.ToLower(login)),
		Name:         name,
		PasswordHash: pwHash,
		RegisteredAt: time.Now().UTC(),
		Active:       TRUE(),
		Verified:     FALSE(),
	}, nil
}

// User is an account able to log in to the administration.
type User struct { //nolint:govet // fieldalignment less important than grouping of fields.
	ID           ID
	Login        Login
	Name         Name
	PasswordHash PasswordHash
	RegisteredAt time.Time

	Active   BoolFlag
	Verified BoolFlag
}

func (u *User) IsActive() bool {
	return u.Active.IsTrue()
}

func (u *User) IsVerified() bool {
	return u.Verified.IsTrue()
}

// Activate is a noop for an active User, so the time it became active is kept.
func (u *User) Activate() {
	u.Active = u.Active.SetTrue()
}

func (u *User) Deactivate() {
	u.Active = u.Active.SetFalse()
}

// NewID generates a new ID for a User.
func NewID() ID {
	return ID(uuid.Must(uuid.NewV7()).String())
}

// ID is the primary identifier of a User.
type ID string

// Login is the email address a User logs in with. It is stored in lower case.
type Login string

// NewName capitalises all values.
// If no displayName is given, it is concatenated from firstName and lastName.
func NewName(firstName string, lastName string, displayName string) Name {
	firstName = toTitle(firstName)
	lastName = toTitle(lastName)
	displayName = toTitle(displayName)

	if displayName == "" {
		displayName = strings.TrimSpace(firstName + " " + lastName)
	}

	return Name{
		FirstName:   firstName,
		LastName:    lastName,
		DisplayName: displayName,
	}
}

// toTitle trims s and capitalises the first letter of each word.
func toTitle(s string) string {
	words := strings.Fields(s)

	for i, w := range words {
		r := []rune(w)
		words[i] = string(append([]rune{unicode.ToTitle(r[0])}, r[1:]...))
	}

	return strings.Join(words, " ")
}

type Name struct {
	FirstName   string
	LastName    string
	DisplayName string
}
