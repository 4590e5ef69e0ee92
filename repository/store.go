package repository

import "errors"

var (
	ErrStore = errors.New("could not store repository data")
	ErrLoad  = errors.New("could not load repository data")
)

// Store persists all entities of a MemoryRepository at once, under the repository's file name.
// A repository loads its file when created and stores it after each change,
// so its data survives a restart of bizadmin.
type Store interface {
	Store(fileName string, data any) error
	Load(fileName string, data any) error
}

// volatile is the default Store: the data lives as long as the process.
type volatile struct{}

var _ Store = volatile{}

func (volatile) Store(string, any) error { return nil }
func (volatile) Load(string, any) error  { return nil }
