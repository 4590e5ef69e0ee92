package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrStorage       = errors.New("storage error")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrSaveFailed    = fmt.Errorf("%w: save failed", ErrStorage)
)

// Repository documents the methods available by the generic MemoryRepository and PostgresRepository.
// ID is the primary key and needs to be of one of the underlying types.
//
// All returns the entities in a stable order: the order of insertion for the MemoryRepository,
// the configured order for the PostgresRepository. It never returns nil.
type Repository[E any, ID id] interface {
	NextID(ctx context.Context) (ID, error)

	All(ctx context.Context) ([]E, error)
	FindByID(ctx context.Context, id ID) (E, error)
	FindByIDs(ctx context.Context, ids []ID) ([]E, error)
	Exists(ctx context.Context, id ID) (bool, error)
	Count(ctx context.Context) (int, error)

	// Add creates a new entity and fails with ErrAlreadyExists if the id is taken.
	Add(ctx context.Context, entity E) error
	// Update changes an existing entity and fails with ErrNotFound if it does not exist.
	Update(ctx context.Context, entity E) error
	// Save creates or updates entity.
	Save(ctx context.Context, entity E) error
	Delete(ctx context.Context, entity E) error
	Clear(ctx context.Context) error
}

// id are the types allowed as a primary key used in the generic Repository.
type id interface {
	~string |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Option configures a repository.
// Options not supported by an implementation are ignored.
type Option func(config *repoConfig)

type repoConfig struct {
	idFieldName string

	// memory only
	store    Store
	filename string

	// postgres only
	table   string
	orderBy []string
}

// WithIDField set's the name of the field that is used as an id or primary key.
// If not set, it is assumed that the entity struct has a field with the name "ID".
func WithIDField(idFieldName string) Option {
	return func(config *repoConfig) {
		config.idFieldName = idFieldName
	}
}

var errIDFieldWrong = errors.New("the ID field used as primary key is wrong")

// getID reads the primary key of entity by reflection.
func getID[ID id](idFieldName string, entity any) (ID, error) {
	var id ID

	val := reflect.ValueOf(entity)
	for val.Kind() == reflect.Pointer {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return id, fmt.Errorf("%w: entity is not a struct", errIDFieldWrong)
	}

	idField := val.FieldByName(idFieldName)
	if !idField.IsValid() {
		return id, fmt.Errorf("%w: entity does not have the field with name: %s", errIDFieldWrong, idFieldName)
	}

	switch idField.Kind() {
	case reflect.String:
		reflect.ValueOf(&id).Elem().SetString(idField.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		reflect.ValueOf(&id).Elem().SetInt(idField.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		reflect.ValueOf(&id).Elem().SetUint(idField.Uint())
	default:
		return id, fmt.Errorf("%w: type of ID is not supported: %s", errIDFieldWrong, idField.Kind())
	}

	if id == *new(ID) {
		return id, fmt.Errorf("%w: missing ID", errIDFieldWrong)
	}

	return id, nil
}
