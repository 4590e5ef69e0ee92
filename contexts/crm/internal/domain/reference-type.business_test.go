package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/bizadmin/contexts/crm/internal/domain"
)

func TestNewEmailType(t *testing.T) {
	t.Parallel()

	t.Run("new type is active", func(t *testing.T) {
		t.Parallel()

		et, err := domain.NewEmailType("  Principal ", " main address ")
		require.NoError(t, err)

		assert.NotEmpty(t, et.ID)
		assert.Equal(t, "Principal", et.Name)
		assert.Equal(t, "main address", et.Description)
		assert.True(t, et.IsActive())
		assert.False(t, et.CreatedAt.IsZero())
	})

	tests := map[string]struct {
		name        string
		description string
		err         error
	}{
		"missing name":     {"", "", domain.ErrInvalidName},
		"whitespace name":  {"   ", "", domain.ErrInvalidName},
		"name too long":    {strings.Repeat("a", domain.MaxNameLength+1), "", domain.ErrInvalidName},
		"description long": {"a", strings.Repeat("a", domain.MaxDescriptionLength+1), domain.ErrInvalidDescription},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := domain.NewEmailType(tc.name, tc.description)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	t.Run("max length counts runes", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewEmailType(strings.Repeat("ä", domain.MaxNameLength), "")
		assert.NoError(t, err)
	})
}

func TestReferenceType_Activate(t *testing.T) {
	t.Parallel()

	title, err := domain.NewTitle("Dr.", "")
	require.NoError(t, err)

	title.Deactivate()
	assert.False(t, title.IsActive())

	title.Deactivate()
	assert.False(t, title.IsActive(), "deactivating twice is a noop")

	title.Activate()
	assert.True(t, title.IsActive())

	title.Activate()
	assert.True(t, title.IsActive(), "activating twice is a noop")
}

func TestKinds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "AddressType", kindOf[domain.AddressType]())
	assert.Equal(t, "EmailType", kindOf[domain.EmailType]())
	assert.Equal(t, "PhoneType", kindOf[domain.PhoneType]())
	assert.Equal(t, "Title", kindOf[domain.Title]())
	assert.Equal(t, "Module", kindOf[domain.Module]())
	assert.Equal(t, "SocialMediaType", kindOf[domain.SocialMediaType]())
}

func TestEntity_Base(t *testing.T) {
	t.Parallel()

	et, err := domain.NewEmailType("Work", "")
	require.NoError(t, err)

	deactivate(&et)
	assert.False(t, et.Active, "Base gives access to the entity, not a copy")
}

// kindOf only compiles for kinds satisfying domain.Entity.
func kindOf[E any, P domain.Entity[E]]() string {
	return P(new(E)).Kind()
}

func deactivate[E any, P domain.Entity[E]](e P) {
	e.Base().Deactivate()
}
