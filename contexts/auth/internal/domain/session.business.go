package domain

import (
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/mileusna/useragent"
)

var ErrInvalidSession = errors.New("invalid session")

// SessionLifetime is how long an access token is valid after login.
const SessionLifetime = 30 * 24 * time.Hour

// NewSession starts a Session for user with a random access token.
func NewSession(userID ID, userAgent string) (Session, error) {
	const keyLength = 32

	key := securecookie.GenerateRandomKey(keyLength)
	if key == nil {
		return Session{}, fmt.Errorf("%w: could not generate access token", ErrInvalidSession)
	}

	now := time.Now().UTC()

	return Session{
		ID:          SessionID(uuid.Must(uuid.NewV7()).String()),
		UserID:      userID,
		AccessToken: base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(key),
		CreatedAt:   now,
		ExpiresAt:   now.Add(SessionLifetime),
		Active:      true,
		Device:      NewDevice(userAgent),
	}, nil
}

type SessionID string

// Session is a login of a User on one device.
// A Session ends by deleting it, or when it expires.
type Session struct {
	ID          SessionID
	UserID      ID
	AccessToken string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Active      bool
	Device      Device
}

// IsValid reports if the Session can be used at the time now.
func (s Session) IsValid(now time.Time) bool {
	return s.Active && now.Before(s.ExpiresAt)
}

func NewDevice(userAgent string) Device {
	return Device{UserAgent: userAgent}
}

// Device contains human friendly information about the device the user is using.
type Device struct {
	UserAgent string
}

func (d Device) Name() string {
	ua := useragent.Parse(d.UserAgent)

	if ua.Name == "" && ua.Version == "" {
		return ""
	}

	return fmt.Sprintf("%s v%s", ua.Name, ua.Version)
}

func (d Device) OS() string {
	ua := useragent.Parse(d.UserAgent)

	if ua.OS == "" && ua.OSVersion == "" {
		return ""
	}

	return fmt.Sprintf("%s v%s", ua.OS, ua.OSVersion)
}

func (d Device) String() string {
	return strings.TrimSpace(d.Name() + " " + d.OS())
}
