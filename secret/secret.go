// Package secret masks sensitive configuration values,
// like database passwords or mail provider keys,
// so they do not end up in logs or JSON output.
package secret

import (
	"encoding/json"
	"log/slog"
)

const mask = "******"

func New(value string) Secret {
	return Secret{value: value}
}

// Secret holds a value that is masked whenever it is printed, logged, or marshalled.
// The only way to read it is Secret().
// The zero value is an empty secret.
type Secret struct {
	value string
}

var (
	_ slog.LogValuer = Secret{}
	_ json.Marshaler = Secret{}
)

func (s Secret) Secret() string {
	return s.value
}

func (s Secret) String() string {
	return mask
}

// GoString masks the value for the %#v verb as well.
func (s Secret) GoString() string {
	return "secret.Secret{" + mask + "}"
}

func (s Secret) LogValue() slog.Value {
	return slog.StringValue(mask)
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(mask) //nolint:wrapcheck // marshalling a constant string does not fail
}

func (s *Secret) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &s.value) //nolint:wrapcheck // export the underlying error
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(mask), nil
}

// UnmarshalText allows a Secret to be decoded from config files and environment variables.
func (s *Secret) UnmarshalText(text []byte) error {
	s.value = string(text)

	return nil
}
