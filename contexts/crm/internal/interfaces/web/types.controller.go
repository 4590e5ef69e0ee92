// Package web exposes the reference data of the crm as a REST API.
package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/contexts/crm/internal/application"
	"github.com/go-arrower/bizadmin/contexts/crm/internal/domain"
	"github.com/go-arrower/bizadmin/shared"
)

// NewTypesController serves all kinds of reference data. The key of apps is the
// url slug of a kind, e.g. email-types.
func NewTypesController(routes *echo.Group, apps map[string]application.TypeApplication) *TypesController {
	return &TypesController{r: routes, apps: apps}
}

type TypesController struct {
	r    *echo.Group
	apps map[string]application.TypeApplication
}

func (tc *TypesController) RegisterRoutes() {
	tc.r.GET("/:kind", tc.Index())
	tc.r.POST("/:kind", tc.Store())
	tc.r.POST("/:kind/:id/activate", tc.Activate())
	tc.r.POST("/:kind/:id/deactivate", tc.Deactivate())
}

func (tc *TypesController) Index() func(echo.Context) error {
	return func(c echo.Context) error {
		ta, ok := tc.kind(c)
		if !ok {
			return unknownKind(c)
		}

		res, err := ta.List(c.Request().Context())

		return shared.Respond(c, http.StatusOK, res, err)
	}
}

func (tc *TypesController) Store() func(echo.Context) error {
	return func(c echo.Context) error {
		ta, ok := tc.kind(c)
		if !ok {
			return unknownKind(c)
		}

		var req application.CreateTypeRequest
		if err := c.Bind(&req); err != nil {
			return shared.RespondMalformed(c, err)
		}

		res, err := ta.Create.H(c.Request().Context(), req)

		return shared.Respond(c, http.StatusCreated, res, err)
	}
}

func (tc *TypesController) Activate() func(echo.Context) error {
	return func(c echo.Context) error {
		ta, ok := tc.kind(c)
		if !ok {
			return unknownKind(c)
		}

		err := ta.Activate.H(c.Request().Context(), application.ActivateTypeCommand{ID: domain.TypeID(c.Param("id"))})

		return shared.Respond(c, http.StatusOK, stateResponse{ID: c.Param("id"), IsActive: true}, err)
	}
}

func (tc *TypesController) Deactivate() func(echo.Context) error {
	return func(c echo.Context) error {
		ta, ok := tc.kind(c)
		if !ok {
			return unknownKind(c)
		}

		err := ta.Deactivate.H(c.Request().Context(), application.DeactivateTypeCommand{ID: domain.TypeID(c.Param("id"))})

		return shared.Respond(c, http.StatusOK, stateResponse{ID: c.Param("id"), IsActive: false}, err)
	}
}

type stateResponse struct {
	ID       string `json:"id"`
	IsActive bool   `json:"isActive"`
}

func (tc *TypesController) kind(c echo.Context) (application.TypeApplication, bool) {
	ta, ok := tc.apps[c.Param("kind")]

	return ta, ok
}

func unknownKind(c echo.Context) error {
	return shared.Respond(c, http.StatusOK, struct{}{}, app.NewNotFoundError("Kind", c.Param("kind")))
}
