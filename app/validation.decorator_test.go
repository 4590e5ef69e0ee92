package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/bizadmin/app"
)

type createEmailType struct {
	Name        string `validate:"required"`
	Description string `validate:"max=8"`
}

func validated(validate *validator.Validate) decorators[createEmailType] {
	return decorators[createEmailType]{
		request: func(h app.Request[createEmailType, response]) app.Request[createEmailType, response] {
			return app.NewValidatedRequest(validate, h)
		},
		command: func(h app.Command[createEmailType]) app.Command[createEmailType] {
			return app.NewValidatedCommand(validate, h)
		},
		query: func(h app.Query[createEmailType, response]) app.Query[createEmailType, response] {
			return app.NewValidatedQuery(validate, h)
		},
		job: func(h app.Job[createEmailType]) app.Job[createEmailType] {
			return app.NewValidatedJob(validate, h)
		},
	}
}

func TestValidatingDecorator_H(t *testing.T) {
	t.Parallel()

	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			t.Run("valid", func(t *testing.T) {
				t.Parallel()

				called := false
				useCase := func(ctx context.Context, _ createEmailType) error {
					called = true

					assert.True(t, app.PassedValidation(ctx))

					return nil
				}

				err := useCases(validated(validator.New()), useCase)[kind](ctx, createEmailType{Name: "Work"})
				assert.NoError(t, err)
				assert.True(t, called)
			})

			t.Run("invalid never reaches the use case", func(t *testing.T) {
				t.Parallel()

				useCase := func(_ context.Context, _ createEmailType) error {
					t.Error("use case should not be called")

					return nil
				}

				err := useCases(validated(validator.New()), useCase)[kind](ctx, createEmailType{Description: "too long for it"})
				assert.ErrorIs(t, err, app.ErrValidation)

				var fieldErrs validator.ValidationErrors
				assert.True(t, errors.As(err, &fieldErrs))
				assert.Len(t, fieldErrs, 2)

				dErr := app.AsDomainError(err)
				assert.Equal(t, "createEmailType.Invalid", dErr.Code)
				assert.Equal(t, "Name failed on 'required'; Description failed on 'max=8'", dErr.Message)
			})

			t.Run("default validator", func(t *testing.T) {
				t.Parallel()

				err := useCases(validated(nil), succeed[createEmailType])[kind](ctx, createEmailType{})
				assert.ErrorIs(t, err, app.ErrValidation)
			})
		})
	}
}

func TestPassedValidation(t *testing.T) {
	t.Parallel()

	assert.False(t, app.PassedValidation(ctx))
}
