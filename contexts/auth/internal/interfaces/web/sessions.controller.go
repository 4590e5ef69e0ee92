package web

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/application"
	"github.com/go-arrower/bizadmin/shared"
)

func NewSessionsController(routes *echo.Group, sessions application.SessionApplication) *SessionsController {
	return &SessionsController{r: routes, app: sessions}
}

type SessionsController struct {
	r   *echo.Group
	app application.SessionApplication
}

func (sc *SessionsController) RegisterRoutes() {
	sc.r.POST("", sc.Login())
	sc.r.DELETE("", sc.Logout())
}

func (sc *SessionsController) Login() func(echo.Context) error {
	return func(c echo.Context) error {
		var req application.LoginUserRequest
		if err := c.Bind(&req); err != nil {
			return shared.RespondMalformed(c, err)
		}

		req.UserAgent = c.Request().UserAgent()
		req.IP = c.RealIP()

		res, err := sc.app.LoginUser.H(c.Request().Context(), req)

		return shared.Respond(c, http.StatusCreated, res, err)
	}
}

// Logout ends the session of the bearer token. Logging out a session,
// that is already closed, succeeds with a note.
func (sc *SessionsController) Logout() func(echo.Context) error {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return shared.Respond(c, http.StatusOK, application.LogoutUserResponse{},
				app.NewValidationError("Auth.MissingToken", "authorization header with a bearer token is required"))
		}

		res, err := sc.app.LogoutUser.H(c.Request().Context(), application.LogoutUserRequest{AccessToken: token})
		if err == nil && res.Note != "" {
			return shared.RespondWithNote(c, res, res.Note)
		}

		return shared.Respond(c, http.StatusOK, res, err)
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "

	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])

	return token, token != ""
}
