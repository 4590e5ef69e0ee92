package domain_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
)

const (
	userLogin   = "0@test.com"
	rawPassword = "0Secret!"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("invalid user details", func(t *testing.T) {
		t.Parallel()

		tests := map[string]struct {
			login    string
			password string
		}{
			"no login": {
				"",
				rawPassword,
			},
			"weak pw": {
				userLogin,
				"123",
			},
			"invalid email": {
				"invalid-email",
				gofakeit.Password(true, true, true, true, false, 12),
			},
		}

		for name, tt := range tests {
			t.Run(name, func(t *testing.T) {
				t.Parallel()

				usr, err := domain.NewUser(tt.login, tt.password, domain.Name{})
				assert.ErrorIs(t, err, domain.ErrInvalidUserDetails)
				assert.Empty(t, usr)
			})
		}
	})

	t.Run("new user", func(t *testing.T) {
		t.Parallel()

		usr, err := domain.NewUser(" 0@Test.com ", rawPassword, domain.NewName("ada", "lovelace", ""))
		require.NoError(t, err)

		assert.NotEmpty(t, usr.ID)
		assert.Equal(t, domain.Login(userLogin), usr.Login)
		assert.Equal(t, "Ada Lovelace", usr.Name.DisplayName)
		assert.True(t, usr.PasswordHash.Matches(rawPassword))
		assert.True(t, usr.IsActive())
		assert.False(t, usr.IsVerified())
		assert.False(t, usr.RegisteredAt.IsZero())
	})
}

func TestUser_Activate(t *testing.T) {
	t.Parallel()

	t.Run("activate twice keeps the time", func(t *testing.T) {
		t.Parallel()

		usr := domain.User{Active: domain.TRUE()}
		since := usr.Active.At()

		usr.Activate()

		assert.True(t, usr.IsActive())
		assert.Equal(t, since, usr.Active.At())
	})

	t.Run("deactivate then activate", func(t *testing.T) {
		t.Parallel()

		usr := domain.User{Active: domain.TRUE()}

		usr.Deactivate()
		assert.False(t, usr.IsActive())

		usr.Deactivate()
		assert.False(t, usr.IsActive())

		usr.Activate()
		assert.True(t, usr.IsActive())
	})
}

func TestNewStrongPasswordHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		password string
		weak     bool
	}{
		{"", true},
		{"0Secret", true},
		{"0secret!", true},
		{"0SECRET!", true},
		{"OSecret!", true},
		{"0Secret0", true},
		{rawPassword, false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			t.Parallel()

			hash, err := domain.NewStrongPasswordHash(tt.password)
			if tt.weak {
				assert.ErrorIs(t, err, domain.ErrWeakPassword)
				assert.Empty(t, hash)

				return
			}

			assert.NoError(t, err)
			assert.True(t, hash.Matches(tt.password))
			assert.False(t, hash.Matches("wrong"))
		})
	}
}

func TestPasswordHash_String(t *testing.T) {
	t.Parallel()

	hash, err := domain.NewPasswordHash(rawPassword)
	require.NoError(t, err)

	assert.Equal(t, "xxxxxx", fmt.Sprint(hash))
	assert.Equal(t, "xxxxxx", fmt.Sprintf("%s", hash))
}

func TestNewName(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		first, last, display string
		expected             domain.Name
	}{
		"empty": {
			"", "", "",
			domain.Name{},
		},
		"display from first and last": {
			" ada ", "lovelace", "",
			domain.Name{FirstName: "Ada", LastName: "Lovelace", DisplayName: "Ada Lovelace"},
		},
		"only first name": {
			"ada", "", "",
			domain.Name{FirstName: "Ada", DisplayName: "Ada"},
		},
		"display name given": {
			"ada", "lovelace", "countess of lovelace",
			domain.Name{FirstName: "Ada", LastName: "Lovelace", DisplayName: "Countess Of Lovelace"},
		},
		"unicode": {
			"élodie", "", "",
			domain.Name{FirstName: "Élodie", DisplayName: "Élodie"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, domain.NewName(tt.first, tt.last, tt.display))
		})
	}
}

func TestBoolFlag(t *testing.T) {
	t.Parallel()

	t.Run("true and false", func(t *testing.T) {
		t.Parallel()

		assert.True(t, domain.TRUE().IsTrue())
		assert.True(t, domain.FALSE().IsFalse())
		assert.True(t, domain.TRUE().SetFalse().IsFalse())
		assert.True(t, domain.BoolFlag(time.Now()).IsTrue())
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		flag := domain.TRUE()

		data, err := json.Marshal(flag)
		require.NoError(t, err)

		var got domain.BoolFlag
		require.NoError(t, json.Unmarshal(data, &got))
		assert.True(t, got.IsTrue())
		assert.True(t, flag.At().Equal(got.At()))
	})
}
