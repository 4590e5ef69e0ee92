package domain

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	passwordSpecials  = "!@#$%^&*"
)

// PasswordHash is the bcrypt hash of a password. The password itself is never stored.
type PasswordHash string

// NewPasswordHash hashes password without checking its strength.
func NewPasswordHash(password string) (PasswordHash, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: could not hash password: %v", ErrInvalidUserDetails, err) //nolint:errorlint,lll // prevent err in api
	}

	return PasswordHash(hash), nil
}

// NewStrongPasswordHash is NewPasswordHash, but rejects weak passwords with ErrWeakPassword.
func NewStrongPasswordHash(password string) (PasswordHash, error) {
	if !strongPassword(password) {
		return "", ErrWeakPassword
	}

	return NewPasswordHash(password)
}

func (pw PasswordHash) Matches(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(pw), []byte(password)) == nil
}

func (pw PasswordHash) String() string { return "xxxxxx" }

// strongPassword requires at least minPasswordLength characters
// with an upper and a lower case letter, a digit and one of passwordSpecials.
func strongPassword(password string) bool {
	if len(password) < minPasswordLength {
		return false
	}

	var upper, lower, digit, special bool

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	return upper && lower && digit && special
}
