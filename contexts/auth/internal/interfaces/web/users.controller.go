// Package web exposes the users and sessions of auth as a REST API.
package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/go-arrower/bizadmin/contexts/auth/internal/application"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
	"github.com/go-arrower/bizadmin/shared"
)

func NewUsersController(routes *echo.Group, users application.UserApplication) *UsersController {
	return &UsersController{r: routes, app: users}
}

type UsersController struct {
	r   *echo.Group
	app application.UserApplication
}

func (uc *UsersController) RegisterRoutes() {
	uc.r.GET("", uc.Index())
	uc.r.POST("", uc.Store())
	uc.r.GET("/:id", uc.Show())
	uc.r.POST("/:id/activate", uc.Activate())
	uc.r.POST("/:id/deactivate", uc.Deactivate())
}

func (uc *UsersController) Index() func(echo.Context) error {
	return func(c echo.Context) error {
		var query application.ListUsersQuery
		if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
			return shared.RespondMalformed(c, err)
		}

		res, err := uc.app.ListUsers.H(c.Request().Context(), query)

		return shared.Respond(c, http.StatusOK, res, err)
	}
}

func (uc *UsersController) Store() func(echo.Context) error {
	return func(c echo.Context) error {
		var req application.CreateUserRequest
		if err := c.Bind(&req); err != nil {
			return shared.RespondMalformed(c, err)
		}

		res, err := uc.app.CreateUser.H(c.Request().Context(), req)

		return shared.Respond(c, http.StatusCreated, res, err)
	}
}

func (uc *UsersController) Show() func(echo.Context) error {
	return func(c echo.Context) error {
		res, err := uc.app.ShowUser.H(c.Request().Context(), application.ShowUserQuery{UserID: domain.ID(c.Param("id"))})

		return shared.Respond(c, http.StatusOK, res, err)
	}
}

func (uc *UsersController) Activate() func(echo.Context) error {
	return func(c echo.Context) error {
		res, err := uc.app.ActivateUser.H(c.Request().Context(),
			application.ActivateUserRequest{UserID: domain.ID(c.Param("id"))})

		return shared.Respond(c, http.StatusOK, res, err)
	}
}

func (uc *UsersController) Deactivate() func(echo.Context) error {
	return func(c echo.Context) error {
		res, err := uc.app.DeactivateUser.H(c.Request().Context(),
			application.DeactivateUserRequest{UserID: domain.ID(c.Param("id"))})

		return shared.Respond(c, http.StatusOK, res, err)
	}
}
