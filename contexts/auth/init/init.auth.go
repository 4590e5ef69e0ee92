// Package init is the context's startup API.
//
// It sets up the repositories matching the configured storage, wires the use cases with
// their decorators, registers the job workers and the routes under /api/users and /api/sessions.
package init

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-arrower/bizadmin"
	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/application"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/domain"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/interfaces/repository"
	"github.com/go-arrower/bizadmin/contexts/auth/internal/interfaces/web"
)

const contextName = "auth"

// PruneSchedule is how often expired sessions are deleted.
const PruneSchedule = "@hourly"

func NewAuthContext(ctx context.Context, di *bizadmin.Container) (*AuthContext, error) {
	err := ensureRequiredDependencies(di)
	if err != nil {
		return nil, fmt.Errorf("missing dependencies to initialise context auth: %w", err)
	}

	auth, err := setupAuthContext(di)
	if err != nil {
		return nil, fmt.Errorf("could not initialise context auth: %w", err)
	}

	di.Logger.DebugContext(ctx, "context auth initialised")

	return auth, nil
}

type AuthContext struct {
	users    domain.UserRepository
	sessions domain.SessionRepository

	userApp    application.UserApplication
	sessionApp application.SessionApplication

	usersController    *web.UsersController
	sessionsController *web.SessionsController
}

func (c *AuthContext) Shutdown(_ context.Context) error {
	return nil
}

func ensureRequiredDependencies(di *bizadmin.Container) error {
	if di == nil {
		return fmt.Errorf("%w: container", bizadmin.ErrMissingDependency)
	}

	if di.Logger == nil {
		return fmt.Errorf("%w: logger", bizadmin.ErrMissingDependency)
	}

	if di.APIRouter == nil {
		return fmt.Errorf("%w: api router", bizadmin.ErrMissingDependency)
	}

	if di.UnitOfWork == nil {
		return fmt.Errorf("%w: unit of work", bizadmin.ErrMissingDependency)
	}

	if di.Queue == nil {
		return fmt.Errorf("%w: queue", bizadmin.ErrMissingDependency)
	}

	if di.Mailer == nil || di.Templates == nil {
		return fmt.Errorf("%w: mail", bizadmin.ErrMissingDependency)
	}

	if di.Validate == nil {
		return fmt.Errorf("%w: validate", bizadmin.ErrMissingDependency)
	}

	return nil
}

func setupAuthContext(di *bizadmin.Container) (*AuthContext, error) {
	logger := di.Logger.With(slog.String("context", contextName))

	auth := &AuthContext{}

	if di.UsesPostgres() {
		auth.users = repository.NewUserPostgresRepository(di.PGx)
		auth.sessions = repository.NewSessionPostgresRepository(di.PGx)
	} else {
		auth.users = repository.NewUserMemoryRepository(di.MemoryRepositoryOptions()...)
		auth.sessions = repository.NewSessionMemoryRepository(di.MemoryRepositoryOptions()...)
	}

	if err := setupApplication(di, logger, auth); err != nil {
		return nil, err
	}

	if err := registerJobs(di, logger, auth); err != nil {
		return nil, err
	}

	auth.usersController = web.NewUsersController(di.APIRouter.Group("/users"), auth.userApp)
	auth.usersController.RegisterRoutes()

	auth.sessionsController = web.NewSessionsController(di.APIRouter.Group("/sessions"), auth.sessionApp)
	auth.sessionsController.RegisterRoutes()

	return auth, nil
}

func setupApplication(di *bizadmin.Container, logger *slog.Logger, auth *AuthContext) error {
	createUser, err := application.NewCreateUserRequestHandler(auth.users, di.UnitOfWork, di.Queue)
	if err != nil {
		return err
	}

	activateUser, err := application.NewActivateUserRequestHandler(auth.users, di.UnitOfWork, di.Queue)
	if err != nil {
		return err
	}

	deactivateUser, err := application.NewDeactivateUserRequestHandler(auth.users, di.UnitOfWork, di.Queue)
	if err != nil {
		return err
	}

	listUsers, err := application.NewListUsersQueryHandler(auth.users)
	if err != nil {
		return err
	}

	showUser, err := application.NewShowUserQueryHandler(auth.users)
	if err != nil {
		return err
	}

	loginUser, err := application.NewLoginUserRequestHandler(logger, auth.users, auth.sessions, di.UnitOfWork)
	if err != nil {
		return err
	}

	logoutUser, err := application.NewLogoutUserRequestHandler(auth.sessions, di.UnitOfWork)
	if err != nil {
		return err
	}

	auth.userApp = application.UserApplication{
		CreateUser:     request(di, logger, createUser),
		ActivateUser:   request(di, logger, activateUser),
		DeactivateUser: request(di, logger, deactivateUser),
		ListUsers:      query(di, logger, listUsers),
		ShowUser:       query(di, logger, showUser),
	}

	auth.sessionApp = application.SessionApplication{
		LoginUser:  request(di, logger, loginUser),
		LogoutUser: request(di, logger, logoutUser),
	}

	return nil
}

// registerJobs does not wrap the workers in a unit of work:
// the queue already runs each Job in its own transaction.
func registerJobs(di *bizadmin.Container, logger *slog.Logger, auth *AuthContext) error {
	notify, err := application.NewSendUserNotificationJobHandler(di.Mailer, di.Templates, application.Branding{
		Organisation: di.Config.OrganisationName,
		Application:  di.Config.ApplicationName,
	})
	if err != nil {
		return err
	}

	prune, err := application.NewPruneExpiredSessionsJobHandler(logger, auth.sessions)
	if err != nil {
		return err
	}

	notify = app.NewInstrumentedJob(di.TraceProvider, di.MeterProvider, logger, app.NewValidatedJob(di.Validate, notify))
	prune = app.NewInstrumentedJob(di.TraceProvider, di.MeterProvider, logger, prune)

	if err = di.Queue.RegisterJobFunc(notify.H); err != nil {
		return fmt.Errorf("could not register notification worker: %w", err)
	}

	if err = di.Queue.RegisterJobFunc(prune.H); err != nil {
		return fmt.Errorf("could not register prune worker: %w", err)
	}

	if err = di.Queue.Schedule(PruneSchedule, application.PruneExpiredSessionsJob{}); err != nil {
		return fmt.Errorf("could not schedule session pruning: %w", err)
	}

	return nil
}

func request[Req any, Res any](di *bizadmin.Container, logger *slog.Logger, h app.Request[Req, Res]) app.Request[Req, Res] {
	return app.NewInstrumentedRequest(di.TraceProvider, di.MeterProvider, logger,
		app.NewValidatedRequest(di.Validate,
			app.NewTxRequest(di.UnitOfWork, h),
		),
	)
}

func query[Q any, Res any](di *bizadmin.Container, logger *slog.Logger, h app.Query[Q, Res]) app.Query[Q, Res] {
	return app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, logger,
		app.NewValidatedQuery(di.Validate, h),
	)
}
