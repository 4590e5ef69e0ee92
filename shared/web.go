// Package shared contains the web helpers all bounded contexts use,
// so every endpoint answers with the same app.Result envelope.
package shared

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/go-arrower/bizadmin/app"
)

// StatusCode maps the kind of err to an HTTP status code.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, app.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrCanceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes value and err of a use case as app.Result.
// On success, status is used, on failure the status matching err.
func Respond[T any](c echo.Context, status int, value T, err error) error {
	if err != nil {
		dErr := app.AsDomainError(err)

		return c.JSON(StatusCode(dErr), app.Failure[T](dErr)) //nolint:wrapcheck // echo handles the error
	}

	return c.JSON(status, app.Success(value)) //nolint:wrapcheck // echo handles the error
}

// RespondWithNote writes a successful app.Result carrying note.
func RespondWithNote[T any](c echo.Context, value T, note string) error {
	return c.JSON(http.StatusOK, app.SuccessWithNote(value, note)) //nolint:wrapcheck // echo handles the error
}

// RespondMalformed answers a request that could not be bound.
func RespondMalformed(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, app.Failure[any]( //nolint:wrapcheck // echo handles the error
		app.NewValidationError("Request.Malformed", err.Error()).Wrap(err),
	))
}
