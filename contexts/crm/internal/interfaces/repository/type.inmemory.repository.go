// Package repository persists the reference data of the crm in memory or in postgres.
package repository

import (
	"github.com/go-arrower/bizadmin/contexts/crm/internal/domain"
	"github.com/go-arrower/bizadmin/repository"
)

// NewTypeMemoryRepository keeps the entities of one kind in insertion order.
// Pass repository.WithStore to keep them across restarts.
func NewTypeMemoryRepository[E any](opts ...repository.Option) *repository.MemoryRepository[E, domain.TypeID] {
	return repository.NewMemoryRepository[E, domain.TypeID](opts...)
}
