package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// WithStore sets a Store used to persist the Repository.
// ONLY applies to the in memory implementations.
//
// There are no transactions or any consistency guarantees at all! For example, if a store fails,
// the collection is still changed in memory of the repository.
func WithStore(store Store) Option {
	return func(config *repoConfig) {
		config.store = store
	}
}

// WithStoreFilename overwrites the file name a Store should use to persist this Repository.
// ONLY applies to the in memory implementations.
func WithStoreFilename(name string) Option {
	return func(config *repoConfig) {
		config.filename = name
	}
}

// NewMemoryRepository returns an implementation of Repository for the given entity E.
// It is expected that E has a field called `ID`, that is used as the primary key and can
// be overwritten by WithIDField.
// If your repository needs additional methods, embed this repo into your own implementation.
//
// Warning: the consistency of MemoryRepository is not on par with ACID guarantees of a RDBMS.
func NewMemoryRepository[E any, ID id](opts ...Option) *MemoryRepository[E, ID] {
	repo := &MemoryRepository[E, ID]{
		Mutex: &sync.Mutex{},
		data:  make(map[ID]E),
		order: []ID{},
		repoConfig: repoConfig{
			idFieldName: "ID",
			store:       volatile{},
			filename:    defaultFileName(new(E)),
		},
	}

	for _, opt := range opts {
		opt(&repo.repoConfig)
	}

	var entities []E

	err := repo.store.Load(repo.filename, &entities)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		panic("could not load data for memory repository from store: " + err.Error())
	}

	for _, e := range entities {
		id, err := getID[ID](repo.idFieldName, e)
		if err != nil {
			panic("could not load data for memory repository from store: " + err.Error())
		}

		repo.set(id, e)
	}

	return repo
}

// MemoryRepository implements Repository in a generic way.
// Use it to speed up your unit testing and for local development.
type MemoryRepository[E any, ID id] struct {
	// Mutex is embedded, so that repositories who extend MemoryRepository can lock the same mutex as other methods.
	*sync.Mutex

	data  map[ID]E
	order []ID

	currentIntID int64

	repoConfig
}

var _ Repository[struct{ ID string }, string] = (*MemoryRepository[struct{ ID string }, string])(nil)

func defaultFileName(entity any) string {
	return reflect.TypeOf(entity).Elem().Name() + ".json"
}

// NextID returns a new ID. It can be of the underlying type of string or integer.
// Strings are uuids version 7, so they sort by the time they were created.
func (repo *MemoryRepository[E, ID]) NextID(_ context.Context) (ID, error) {
	var id ID

	switch reflect.TypeOf(id).Kind() {
	case reflect.String:
		uid, err := uuid.NewV7()
		if err != nil {
			return id, fmt.Errorf("%w: could not generate id: %v", ErrStorage, err) //nolint:errorlint // prevent err in api
		}

		reflect.ValueOf(&id).Elem().SetString(uid.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		repo.Lock()
		defer repo.Unlock()

		repo.currentIntID++
		reflect.ValueOf(&id).Elem().SetInt(repo.currentIntID)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		repo.Lock()
		defer repo.Unlock()

		repo.currentIntID++
		reflect.ValueOf(&id).Elem().SetUint(uint64(repo.currentIntID))
	default:
		return id, fmt.Errorf("%w: unsupported type", errIDFieldWrong)
	}

	return id, nil
}

func (repo *MemoryRepository[E, ID]) All(_ context.Context) ([]E, error) {
	repo.Lock()
	defer repo.Unlock()

	entities := make([]E, 0, len(repo.order))
	for _, id := range repo.order {
		entities = append(entities, repo.data[id])
	}

	return entities, nil
}

func (repo *MemoryRepository[E, ID]) FindByID(_ context.Context, id ID) (E, error) { //nolint:ireturn,lll // valid use of generics
	repo.Lock()
	defer repo.Unlock()

	e, found := repo.data[id]
	if !found {
		return *new(E), fmt.Errorf("%w: id=%v", ErrNotFound, id)
	}

	return e, nil
}

// FindByIDs returns the entities in the order of ids. If one does not exist, it fails with ErrNotFound.
func (repo *MemoryRepository[E, ID]) FindByIDs(_ context.Context, ids []ID) ([]E, error) {
	repo.Lock()
	defer repo.Unlock()

	entities := make([]E, 0, len(ids))

	for _, id := range ids {
		e, found := repo.data[id]
		if !found {
			return nil, fmt.Errorf("%w: id=%v", ErrNotFound, id)
		}

		entities = append(entities, e)
	}

	return entities, nil
}

func (repo *MemoryRepository[E, ID]) Exists(_ context.Context, id ID) (bool, error) {
	repo.Lock()
	defer repo.Unlock()

	_, found := repo.data[id]

	return found, nil
}

func (repo *MemoryRepository[E, ID]) Count(_ context.Context) (int, error) {
	repo.Lock()
	defer repo.Unlock()

	return len(repo.data), nil
}

func (repo *MemoryRepository[E, ID]) Add(ctx context.Context, entity E) error {
	id, err := getID[ID](repo.idFieldName, entity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	if exists, _ := repo.Exists(ctx, id); exists {
		return fmt.Errorf("%w: id=%v", ErrAlreadyExists, id)
	}

	return write(ctx, func() error {
		repo.Lock()
		defer repo.Unlock()

		if _, found := repo.data[id]; found {
			return fmt.Errorf("%w: id=%v", ErrAlreadyExists, id)
		}

		repo.set(id, entity)

		if err := repo.persist(); err != nil {
			repo.remove(id)

			return err
		}

		return nil
	})
}

func (repo *MemoryRepository[E, ID]) Update(ctx context.Context, entity E) error {
	id, err := getID[ID](repo.idFieldName, entity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	if exists, _ := repo.Exists(ctx, id); !exists {
		return fmt.Errorf("%w: id=%v", ErrNotFound, id)
	}

	return write(ctx, func() error {
		repo.Lock()
		defer repo.Unlock()

		old, found := repo.data[id]
		if !found {
			return fmt.Errorf("%w: id=%v", ErrNotFound, id)
		}

		repo.data[id] = entity

		if err := repo.persist(); err != nil {
			repo.data[id] = old

			return err
		}

		return nil
	})
}

func (repo *MemoryRepository[E, ID]) Save(ctx context.Context, entity E) error {
	id, err := getID[ID](repo.idFieldName, entity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	return write(ctx, func() error {
		repo.Lock()
		defer repo.Unlock()

		old, existed := repo.data[id]
		repo.set(id, entity)

		if err := repo.persist(); err != nil {
			if existed {
				repo.data[id] = old
			} else {
				repo.remove(id)
			}

			return err
		}

		return nil
	})
}

// Delete removes entity. Deleting an entity that does not exist is not an error.
func (repo *MemoryRepository[E, ID]) Delete(ctx context.Context, entity E) error {
	id, err := getID[ID](repo.idFieldName, entity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	return write(ctx, func() error {
		repo.Lock()
		defer repo.Unlock()

		old, found := repo.data[id]
		if !found {
			return nil
		}

		pos := slices.Index(repo.order, id)
		repo.remove(id)

		if err := repo.persist(); err != nil {
			repo.data[id] = old
			repo.order = slices.Insert(repo.order, pos, id)

			return err
		}

		return nil
	})
}

func (repo *MemoryRepository[E, ID]) Clear(ctx context.Context) error {
	return write(ctx, func() error {
		repo.Lock()
		defer repo.Unlock()

		repo.data = make(map[ID]E)
		repo.order = []ID{}

		return repo.persist()
	})
}

// set inserts or replaces the entity. The caller has to hold the lock.
func (repo *MemoryRepository[E, ID]) set(id ID, entity E) {
	if _, found := repo.data[id]; !found {
		repo.order = append(repo.order, id)
	}

	repo.data[id] = entity
}

// remove deletes the entity. The caller has to hold the lock.
func (repo *MemoryRepository[E, ID]) remove(id ID) {
	delete(repo.data, id)

	repo.order = slices.DeleteFunc(repo.order, func(i ID) bool { return i == id })
}

// persist writes all entities in order to the store. The caller has to hold the lock.
func (repo *MemoryRepository[E, ID]) persist() error {
	entities := make([]E, 0, len(repo.order))
	for _, id := range repo.order {
		entities = append(entities, repo.data[id])
	}

	if err := repo.store.Store(repo.filename, entities); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	return nil
}
