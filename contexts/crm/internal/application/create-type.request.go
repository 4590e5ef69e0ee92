package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/contexts/crm/internal/domain"
)

type (
	CreateTypeRequest struct {
		Name        string `json:"name"        validate:"required,max=256"`
		Description string `json:"description" validate:"max=1024"`
	}
	TypeResult struct {
		ID          domain.TypeID `json:"id"`
		Name        string        `json:"name"`
		Description string        `json:"description"`
		IsActive    bool          `json:"isActive"`
		Kind        string        `json:"kind"`
	}
)

// NewCreateTypeRequestHandler creates a new entity with factory. Names are not checked for uniqueness.
func NewCreateTypeRequestHandler[E any, P domain.Entity[E]](
	repo domain.TypeRepository[E],
	uow app.UnitOfWork,
	factory func(name string, description string) (E, error),
) (app.Request[CreateTypeRequest, TypeResult], error) {
	if err := requireRepoAndUoW("CreateTypeRequestHandler", repo, uow); err != nil {
		return nil, err
	}

	if factory == nil {
		return nil, missing("CreateTypeRequestHandler", "factory")
	}

	return &createTypeRequestHandler[E, P]{repo: repo, uow: uow, factory: factory}, nil
}

type createTypeRequestHandler[E any, P domain.Entity[E]] struct {
	repo    domain.TypeRepository[E]
	uow     app.UnitOfWork
	factory func(name string, description string) (E, error)
}

func (h *createTypeRequestHandler[E, P]) H(ctx context.Context, req CreateTypeRequest) (TypeResult, error) {
	entity, err := h.factory(req.Name, req.Description)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidName) || errors.Is(err, domain.ErrInvalidDescription) {
			return TypeResult{}, app.NewValidationError(P(&entity).Kind()+".Invalid", err.Error()).Wrap(err)
		}

		return TypeResult{}, fmt.Errorf("could not create %s: %w", P(&entity).Kind(), err)
	}

	if err = h.repo.Add(ctx, entity); err != nil {
		return TypeResult{}, fmt.Errorf("could not add %s: %w", P(&entity).Kind(), err)
	}

	if err = app.NewCanceledError(ctx); err != nil {
		return TypeResult{}, err
	}

	if err = h.uow.SaveChanges(ctx); err != nil {
		return TypeResult{}, fmt.Errorf("could not save %s: %w", P(&entity).Kind(), err)
	}

	t := P(&entity).Base()

	return TypeResult{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		IsActive:    t.Active,
		Kind:        P(&entity).Kind(),
	}, nil
}
