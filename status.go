package bizadmin

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	statusOnline   = "online"
	statusDegraded = "degraded"
)

// SystemStatus is the health of a running instance, as served by /status.
type SystemStatus struct {
	Status           string      `json:"status"`
	Time             time.Time   `json:"time"`
	Uptime           string      `json:"uptime"`
	Build            BuildInfo   `json:"build"`
	OrganisationName string      `json:"organisationName"`
	ApplicationName  string      `json:"applicationName"`
	InstanceName     string      `json:"instanceName"`
	Environment      Environment `json:"environment"`

	Web      HTTP           `json:"web"`
	Database DatabaseStatus `json:"database"`
	Cache    string         `json:"cache"`
	Mail     string         `json:"mail"`
}

type DatabaseStatus struct {
	Driver   string    `json:"driver"`
	Postgres *Postgres `json:"postgres,omitempty"`
	Status   string    `json:"status"`
}

type pinger interface {
	Ping(ctx context.Context) error
}

func getSystemStatus(ctx context.Context, di *Container) SystemStatus {
	status := SystemStatus{
		Status:           statusOnline,
		Time:             time.Now().UTC(),
		Uptime:           time.Since(di.startedAt).Round(time.Second).String(),
		Build:            ReadBuildInfo(),
		OrganisationName: di.Config.OrganisationName,
		ApplicationName:  di.Config.ApplicationName,
		InstanceName:     di.Config.InstanceName,
		Environment:      di.Config.Environment,
		Web:              di.Config.HTTP,
		Database:         DatabaseStatus{Driver: di.Config.Storage.Driver, Status: statusOnline},
		Cache:            di.Config.Cache.Driver,
		Mail:             di.Config.Mail.Driver,
	}

	if di.PGx != nil {
		pg := di.Config.Postgres
		status.Database.Postgres = &pg

		if err := di.PGx.Ping(ctx); err != nil {
			status.Status = statusDegraded
			status.Database.Status = "err: " + err.Error()
		}
	}

	if p, ok := di.Cache.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			status.Status = statusDegraded
			status.Cache += " err: " + err.Error()
		}
	}

	return status
}

// StatusHandler answers with the SystemStatus.
// A degraded instance answers with 503, so load balancers can take it out of rotation.
func StatusHandler(di *Container) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")

		status := getSystemStatus(c.Request().Context(), di)
		if status.Status != statusOnline {
			return c.JSON(http.StatusServiceUnavailable, status)
		}

		return c.JSON(http.StatusOK, status)
	}
}
