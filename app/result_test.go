package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/bizadmin/app"
)

func TestSuccess(t *testing.T) {
	t.Parallel()

	res := app.Success("value")

	assert.True(t, res.IsSuccess())
	assert.Nil(t, res.Error())
	assert.Equal(t, "value", res.Value())
	assert.Empty(t, res.Note())
}

func TestSuccessWithNote(t *testing.T) {
	t.Parallel()

	res := app.SuccessWithNote(true, "already closed")

	assert.True(t, res.IsSuccess())
	assert.Nil(t, res.Error())
	assert.Equal(t, "already closed", res.Note())
}

func TestFailure(t *testing.T) {
	t.Parallel()

	t.Run("failure carries the error and the zero value", func(t *testing.T) {
		t.Parallel()

		res := app.Failure[int](app.NewNotFoundError("EmailType", 7))

		assert.False(t, res.IsSuccess())
		assert.Equal(t, "EmailType.NotFound", res.Error().Code)
		assert.Equal(t, "EmailType with id=7 was not found", res.Error().Message)
		assert.Zero(t, res.Value())
	})

	t.Run("nil error is still a failure", func(t *testing.T) {
		t.Parallel()

		res := app.Failure[int](nil)

		assert.False(t, res.IsSuccess())
		assert.NotNil(t, res.Error())
	})
}

func TestResultOf(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err      error
		success  bool
		expCode  string
		expKind  error
		expValue string
	}{
		"no error": {
			err:      nil,
			success:  true,
			expValue: "value",
		},
		"domain error": {
			err:     app.NewValidationError("CreateTypeRequest.Invalid", "Name failed on 'required'"),
			expCode: "CreateTypeRequest.Invalid",
			expKind: app.ErrValidation,
		},
		"wrapped domain error": {
			err:     fmt.Errorf("%w: more context", app.NewNotFoundError("Title", "1")),
			expCode: "Title.NotFound",
			expKind: app.ErrNotFound,
		},
		"canceled": {
			err:     context.Canceled,
			expCode: "Request.Canceled",
			expKind: app.ErrCanceled,
		},
		"any other error": {
			err:     errors.New("connection refused"), //nolint:err113
			expCode: "Persistence.Failed",
			expKind: app.ErrPersistence,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res := app.ResultOf("value", tt.err)

			assert.Equal(t, tt.success, res.IsSuccess())
			assert.Equal(t, tt.expValue, func() string {
				if res.IsSuccess() {
					return res.Value()
				}

				return ""
			}())

			if !tt.success {
				assert.Equal(t, tt.expCode, res.Error().Code)
				assert.ErrorIs(t, res.Error(), tt.expKind)
			}
		})
	}
}

func TestResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(app.SuccessWithNote([]string{"Principal"}, "note"))
		require.NoError(t, err)

		assert.JSONEq(t, `{"isSuccess":true,"value":["Principal"],"note":"note"}`, string(data))
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(app.Failure[*string](app.NewNotFoundError("Module", "m")))
		require.NoError(t, err)

		assert.JSONEq(t, `{"isSuccess":false,"value":null,"error":{"code":"Module.NotFound","message":"Module with id=m was not found"}}`, string(data))
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(app.Failure[int](app.NewValidationError("X.Invalid", "msg")))
		require.NoError(t, err)

		var res app.Result[int]
		err = json.Unmarshal(data, &res)
		require.NoError(t, err)

		assert.False(t, res.IsSuccess())
		assert.Equal(t, "X.Invalid", res.Error().Code)
	})
}
