package domain

import "context"

// Lister returns all entities of a kind, in a stable order. It never returns nil.
type Lister[E any] interface {
	All(ctx context.Context) ([]E, error)
}

// TypeRepository persists one kind of reference data.
// FindByID returns an error wrapping repository.ErrNotFound, if there is no entity with id.
type TypeRepository[E any] interface {
	Lister[E]

	FindByID(ctx context.Context, id TypeID) (E, error)
	Add(ctx context.Context, entity E) error
	Update(ctx context.Context, entity E) error
}
