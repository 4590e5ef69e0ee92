package web_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/application"
)

func TestSessionsController_Login(t *testing.T) {
	t.Parallel()

	t.Run("login", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(application.UserApplication{}, application.SessionApplication{
			LoginUser: app.TestRequestHandler(func(_ context.Context, req application.LoginUserRequest) (application.LoginUserResponse, error) { //nolint:lll
				assert.Equal(t, "ada@example.com", req.Email)
				assert.Equal(t, "test-agent", req.UserAgent)
				assert.Equal(t, "10.0.0.1", req.IP)

				return application.LoginUserResponse{
					UserID:      "1",
					AccessToken: "token",
					ExpiresAt:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				}, nil
			}),
		})

		rec := serve(e, http.MethodPost, "/api/sessions", `{"email":"ada@example.com","password":"0Secret!"}`,
			"User-Agent", "test-agent", "X-Real-Ip", "10.0.0.1")

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"isSuccess":true,"value":{
			"userId":"1","accessToken":"token","expiresAt":"2024-02-01T00:00:00Z"}}`, rec.Body.String())
	})

	t.Run("invalid credentials", func(t *testing.T) {
		t.Parallel()

		e := newTestRouter(application.UserApplication{}, application.SessionApplication{
			LoginUser: app.TestRequestHandler(func(context.Context, application.LoginUserRequest) (application.LoginUserResponse, error) { //nolint:lll
				return application.LoginUserResponse{}, app.NewValidationError("Auth.InvalidCredentials", "invalid email or password")
			}),
		})

		rec := serve(e, http.MethodPost, "/api/sessions", `{"email":"ada@example.com","password":"wrong"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Auth.InvalidCredentials")
	})
}

func TestSessionsController_Logout(t *testing.T) {
	t.Parallel()

	logout := app.TestRequestHandler(func(_ context.Context, req application.LogoutUserRequest) (application.LogoutUserResponse, error) { //nolint:lll
		if req.AccessToken == "active" {
			return application.LogoutUserResponse{Closed: true}, nil
		}

		return application.LogoutUserResponse{Closed: false, Note: application.NoteAlreadyClosed}, nil
	})
	e := newTestRouter(application.UserApplication{}, application.SessionApplication{LogoutUser: logout})

	tests := map[string]struct {
		header       string
		expectedCode int
		expectedBody string
	}{
		"active session": {
			"Bearer active",
			http.StatusOK,
			`{"isSuccess":true,"value":{"closed":true}}`,
		},
		"already closed": {
			"bearer unknown",
			http.StatusOK,
			`{"isSuccess":true,"value":{"closed":false,"note":"already closed"},"note":"already closed"}`,
		},
		"missing token": {
			"",
			http.StatusBadRequest,
			`{"isSuccess":false,"value":{"closed":false},
				"error":{"code":"Auth.MissingToken","message":"authorization header with a bearer token is required"}}`,
		},
		"other scheme": {
			"Basic YWRhOnNlY3JldA==",
			http.StatusBadRequest,
			`{"isSuccess":false,"value":{"closed":false},
				"error":{"code":"Auth.MissingToken","message":"authorization header with a bearer token is required"}}`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := serve(e, http.MethodDelete, "/api/sessions", "", "Authorization", tt.header)

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
		})
	}
}
