package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-arrower/bizadmin/app"
	"github.com/go-arrower/bizadmin/contexts/crm/internal/domain"
	"github.com/go-arrower/bizadmin/repository"
)

type (
	ActivateTypeCommand struct {
		ID domain.TypeID `validate:"required"`
	}
	DeactivateTypeCommand struct {
		ID domain.TypeID `validate:"required"`
	}
)

func NewActivateTypeCommandHandler[E any, P domain.Entity[E]](
	repo domain.TypeRepository[E],
	uow app.UnitOfWork,
) (app.Command[ActivateTypeCommand], error) {
	if err := requireRepoAndUoW("ActivateTypeCommandHandler", repo, uow); err != nil {
		return nil, err
	}

	return &activateTypeCommandHandler[E, P]{repo: repo, uow: uow}, nil
}

type activateTypeCommandHandler[E any, P domain.Entity[E]] struct {
	repo domain.TypeRepository[E]
	uow  app.UnitOfWork
}

func (h *activateTypeCommandHandler[E, P]) H(ctx context.Context, cmd ActivateTypeCommand) error {
	return changeState[E, P](ctx, h.repo, h.uow, cmd.ID, func(t *domain.ReferenceType) { t.Activate() })
}

func NewDeactivateTypeCommandHandler[E any, P domain.Entity[E]](
	repo domain.TypeRepository[E],
	uow app.UnitOfWork,
) (app.Command[DeactivateTypeCommand], error) {
	if err := requireRepoAndUoW("DeactivateTypeCommandHandler", repo, uow); err != nil {
		return nil, err
	}

	return &deactivateTypeCommandHandler[E, P]{repo: repo, uow: uow}, nil
}

type deactivateTypeCommandHandler[E any, P domain.Entity[E]] struct {
	repo domain.TypeRepository[E]
	uow  app.UnitOfWork
}

func (h *deactivateTypeCommandHandler[E, P]) H(ctx context.Context, cmd DeactivateTypeCommand) error {
	return changeState[E, P](ctx, h.repo, h.uow, cmd.ID, func(t *domain.ReferenceType) { t.Deactivate() })
}

// changeState loads the entity, mutates it, and commits. A missing entity or a canceled ctx commits nothing.
func changeState[E any, P domain.Entity[E]](
	ctx context.Context,
	repo domain.TypeRepository[E],
	uow app.UnitOfWork,
	id domain.TypeID,
	mutate func(t *domain.ReferenceType),
) error {
	entity, err := repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return app.NewNotFoundError(P(&entity).Kind(), id).Wrap(err)
	}

	if err != nil {
		return fmt.Errorf("could not get %s: %w", P(&entity).Kind(), err)
	}

	mutate(P(&entity).Base())

	if err = repo.Update(ctx, entity); err != nil {
		return fmt.Errorf("could not update %s: %w", P(&entity).Kind(), err)
	}

	if err = app.NewCanceledError(ctx); err != nil {
		return err
	}

	if err = uow.SaveChanges(ctx); err != nil {
		return fmt.Errorf("could not save %s: %w", P(&entity).Kind(), err)
	}

	return nil
}

func requireRepoAndUoW[E any](handler string, repo domain.TypeRepository[E], uow app.UnitOfWork) error {
	if repo == nil {
		return missing(handler, "repository")
	}

	if uow == nil {
		return missing(handler, "unit of work")
	}

	return nil
}
