package application

import (
	"context"
	"errors"

	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/contexts/crm/internal/domain"
)

var ErrMissingDependency = errors.New("missing dependency")

type (
	GetAddressTypesQuery     struct{}
	GetEmailTypesQuery       struct{}
	GetPhoneTypesQuery       struct{}
	GetTitlesQuery           struct{}
	GetModulesQuery          struct{}
	GetSocialMediaTypesQuery struct{}
)

type (
	TypeItem struct {
		ID          domain.TypeID `json:"id"`
		Value       string        `json:"value"`
		Description string        `json:"description"`
		IsActive    bool          `json:"isActive"`
	}
	TypesResponse struct {
		Items []TypeItem `json:"items"`
	}
)

// NewGetTypesQueryHandler lists all entities of one kind.
// fetch reads them from repo and build projects them into the response, both without filtering.
func NewGetTypesQueryHandler[Q any, E any, Res any](
	repo domain.Lister[E],
	fetch func(ctx context.Context, repo domain.Lister[E]) ([]E, error),
	build func(entities []E) Res,
) (app.Query[Q, Res], error) {
	if repo == nil {
		return nil, missing("GetTypesQueryHandler", "repository")
	}

	if fetch == nil {
		return nil, missing("GetTypesQueryHandler", "fetch")
	}

	if build == nil {
		return nil, missing("GetTypesQueryHandler", "build")
	}

	return &getTypesQueryHandler[Q, E, Res]{
		repo:  repo,
		fetch: fetch,
		build: build,
	}, nil
}

type getTypesQueryHandler[Q any, E any, Res any] struct {
	repo  domain.Lister[E]
	fetch func(ctx context.Context, repo domain.Lister[E]) ([]E, error)
	build func(entities []E) Res
}

func (h *getTypesQueryHandler[Q, E, Res]) H(ctx context.Context, _ Q) (Res, error) { //nolint:ireturn // valid use of generics
	entities, err := h.fetch(ctx, h.repo)
	if err != nil {
		return *new(Res), err //nolint:wrapcheck // repository errors propagate unmodified
	}

	return h.build(entities), nil
}

// ListAll is the default fetch of NewGetTypesQueryHandler.
func ListAll[E any](ctx context.Context, repo domain.Lister[E]) ([]E, error) {
	entities, err := repo.All(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck // propagate unmodified
	}

	return entities, nil
}

// BuildTypesResponse is the default build of NewGetTypesQueryHandler.
// The items keep the order of entities.
func BuildTypesResponse[E any, P domain.Entity[E]](entities []E) TypesResponse {
	items := make([]TypeItem, 0, len(entities))

	for i := range entities {
		t := P(&entities[i]).Base()

		items = append(items, TypeItem{
			ID:          t.ID,
			Value:       t.Name,
			Description: t.Description,
			IsActive:    t.Active,
		})
	}

	return TypesResponse{Items: items}
}

func missing(handler string, dependency string) *app.DomainError {
	return app.NewValidationError(handler+".Invalid", dependency+" is required").Wrap(ErrMissingDependency)
}
