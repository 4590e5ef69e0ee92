package web_test

import (
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/go-arrower/bizadmin/contexts/auth/internal/application"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/interfaces/web"
)

func newTestRouter(users application.UserApplication, sessions application.SessionApplication) *echo.Echo {
	e := echo.New()

	web.NewUsersController(e.Group("/api/users"), users).RegisterRoutes()
	web.NewSessionsController(e.Group("/api/sessions"), sessions).RegisterRoutes()

	return e
}

func serve(e *echo.Echo, method string, target string, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}
