// Package init is the context's startup API.
//
// It sets up one repository and one set of use cases per kind of reference data
// and serves all of them under /api/types/{kind}.
package init

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-arrower/bizadmin"
	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/contexts/crm/internal/application"
	"github.com/go-arrower/bizadmin/contexts/crm/internal/domain"
	"github.com/go-arrower/bizadmin/contexts/crm/internal/interfaces/repository"
	"github.com/go-arrower/bizadmin/contexts/crm/internal/interfaces/web"
)

const contextName = "crm"

// Kinds are the url slugs of all kinds of reference data.
var Kinds = []string{ //nolint:gochecknoglobals // read only
	"address-types",
	"email-types",
	"phone-types",
	"titles",
	"modules",
	"social-media-types",
}

// CacheKey is the key the list of a kind is cached under.
func CacheKey(slug string) string {
	return contextName + "." + slug
}

func NewCRMContext(ctx context.Context, di *bizadmin.Container) (*CRMContext, error) {
	err := ensureRequiredDependencies(di)
	if err != nil {
		return nil, fmt.Errorf("missing dependencies to initialise context crm: %w", err)
	}

	crm, err := setupCRMContext(di)
	if err != nil {
		return nil, fmt.Errorf("could not initialise context crm: %w", err)
	}

	di.Logger.DebugContext(ctx, "context crm initialised", slog.Int("kinds", len(crm.apps)))

	return crm, nil
}

type CRMContext struct {
	apps map[string]application.TypeApplication

	typesController *web.TypesController
}

func (c *CRMContext) Shutdown(_ context.Context) error {
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

	if di.Cache == nil {
		return fmt.Errorf("%w: cache", bizadmin.ErrMissingDependency)
	}

	if di.Validate == nil {
		return fmt.Errorf("%w: validate", bizadmin.ErrMissingDependency)
	}

	return nil
}

func setupCRMContext(di *bizadmin.Container) (*CRMContext, error) {
	logger := di.Logger.With(slog.String("context", contextName))

	crm := &CRMContext{apps: make(map[string]application.TypeApplication, len(Kinds))}

	setups := map[string]func() (application.TypeApplication, error){
		"address-types": func() (application.TypeApplication, error) {
			return setupKind[application.GetAddressTypesQuery](di, logger, "address-types",
				repository.TableAddressType, domain.NewAddressType)
		},
		"email-types": func() (application.TypeApplication, error) {
			return setupKind[application.GetEmailTypesQuery](di, logger, "email-types",
				repository.TableEmailType, domain.NewEmailType)
		},
		"phone-types": func() (application.TypeApplication, error) {
			return setupKind[application.GetPhoneTypesQuery](di, logger, "phone-types",
				repository.TablePhoneType, domain.NewPhoneType)
		},
		"titles": func() (application.TypeApplication, error) {
			return setupKind[application.GetTitlesQuery](di, logger, "titles",
				repository.TableTitle, domain.NewTitle)
		},
		"modules": func() (application.TypeApplication, error) {
			return setupKind[application.GetModulesQuery](di, logger, "modules",
				repository.TableModule, domain.NewModule)
		},
		"social-media-types": func() (application.TypeApplication, error) {
			return setupKind[application.GetSocialMediaTypesQuery](di, logger, "social-media-types",
				repository.TableSocialMediaType, domain.NewSocialMediaType)
		},
	}

	for _, slug := range Kinds {
		ta, err := setups[slug]()
		if err != nil {
			return nil, fmt.Errorf("could not setup %s: %w", slug, err)
		}

		crm.apps[slug] = ta
	}

	crm.typesController = web.NewTypesController(di.APIRouter.Group("/types"), crm.apps)
	crm.typesController.RegisterRoutes()

	return crm, nil
}

// setupKind wires the use cases of one kind. The list is cached and every
// successful change of the kind invalidates it.
func setupKind[Q any, E any, P domain.Entity[E]](
	di *bizadmin.Container,
	logger *slog.Logger,
	slug string,
	table string,
	factory func(name string, description string) (E, error),
) (application.TypeApplication, error) {
	var repo domain.TypeRepository[E]
	if di.UsesPostgres() {
		repo = repository.NewTypePostgresRepository[E, P](di.PGx, table)
	} else {
		repo = repository.NewTypeMemoryRepository[E](di.MemoryRepositoryOptions()...)
	}

	list, err := application.NewGetTypesQueryHandler[Q, E, application.TypesResponse](
		repo, application.ListAll[E], application.BuildTypesResponse[E, P],
	)
	if err != nil {
		return application.TypeApplication{}, err
	}

	create, err := application.NewCreateTypeRequestHandler[E, P](repo, di.UnitOfWork, factory)
	if err != nil {
		return application.TypeApplication{}, err
	}

	activate, err := application.NewActivateTypeCommandHandler[E, P](repo, di.UnitOfWork)
	if err != nil {
		return application.TypeApplication{}, err
	}

	deactivate, err := application.NewDeactivateTypeCommandHandler[E, P](repo, di.UnitOfWork)
	if err != nil {
		return application.TypeApplication{}, err
	}

	key := CacheKey(slug)
	listKey := func(Q) string { return key }
	createKeys := func(application.CreateTypeRequest) []string { return []string{key} }
	activateKeys := func(application.ActivateTypeCommand) []string { return []string{key} }
	deactivateKeys := func(application.DeactivateTypeCommand) []string { return []string{key} }

	return application.TypeApplication{
		Kind: P(new(E)).Kind(),
		List: application.ListWith(
			app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, logger,
				app.NewCachedQuery(di.Cache, listKey,
					app.NewValidatedQuery(di.Validate, list),
				),
			),
		),
		Create: app.NewCacheInvalidatingRequest(di.Cache, createKeys,
			app.NewInstrumentedRequest(di.TraceProvider, di.MeterProvider, logger,
				app.NewValidatedRequest(di.Validate,
					app.NewTxRequest(di.UnitOfWork, create),
				),
			),
		),
		Activate: app.NewCacheInvalidatingCommand(di.Cache, activateKeys,
			app.NewInstrumentedCommand(di.TraceProvider, di.MeterProvider, logger,
				app.NewValidatedCommand(di.Validate,
					app.NewTxCommand(di.UnitOfWork, activate),
				),
			),
		),
		Deactivate: app.NewCacheInvalidatingCommand(di.Cache, deactivateKeys,
			app.NewInstrumentedCommand(di.TraceProvider, di.MeterProvider, logger,
				app.NewValidatedCommand(di.Validate,
					app.NewTxCommand(di.UnitOfWork, deactivate),
				),
			),
		),
	}, nil
}
