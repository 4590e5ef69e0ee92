package shared_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/shared"
)

func TestStatusCode(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err    error
		status int
	}{
		"no error":    {nil, http.StatusOK},
		"validation":  {app.NewValidationError("Some.Invalid", "invalid"), http.StatusBadRequest},
		"not found":   {app.NewNotFoundError("EmailType", "1"), http.StatusNotFound},
		"canceled":    {app.AsDomainError(context.Canceled), http.StatusServiceUnavailable},
		"persistence": {errors.New("some error"), http.StatusInternalServerError},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.status, shared.StatusCode(tt.err))
		})
	}
}

func TestRespond(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		err := shared.Respond(c, http.StatusCreated, map[string]int{"count": 1}, nil)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"isSuccess":true,"value":{"count":1}}`, rec.Body.String())
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		err := shared.Respond(c, http.StatusOK, []string{"ignored"}, app.NewNotFoundError("Title", "42"))

		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"isSuccess":false,"value":null,
			"error":{"code":"Title.NotFound","message":"Title with id=42 was not found"}}`, rec.Body.String())
	})

	t.Run("note", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		err := shared.RespondWithNote(c, true, "already closed")

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"isSuccess":true,"value":true,"note":"already closed"}`, rec.Body.String())
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		err := shared.RespondMalformed(c, errors.New("unexpected EOF"))

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Request.Malformed")
	})
}
