package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var _ Store = (*JSONStore)(nil)

// JSONStore persists the data of a repository as a human-readable JSON file on disc.
// JSONStore is not schema aware and uses the standard go marshalling.
// CAUTION: Be aware if you change your structs, this can lead to data loss!
// CAUTION: This is only intended for local development and demoing.
type JSONStore struct {
	dir string

	mu sync.Mutex
}

func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(path, 0o750); err != nil { //nolint:mnd // owner & group only
		return nil, fmt.Errorf("%w: could not create path: %s: %w", ErrStore, path, err)
	}

	return &JSONStore{dir: path, mu: sync.Mutex{}}, nil
}

// Store writes data to a temporary file first and renames it afterwards,
// so a crash while writing does not corrupt the existing file.
func (s *JSONStore) Store(fileName string, data any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	tmp, err := os.CreateTemp(s.dir, fileName+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // is gone after a successful rename

	if _, err = tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	if err = os.Rename(tmp.Name(), filepath.Join(s.dir, fileName)); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	return nil
}

// Load decodes the file into data. If the file does not exist, the error wraps os.ErrNotExist.
func (s *JSONStore) Load(fileName string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(filepath.Join(s.dir, fileName))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer f.Close()

	if err = json.NewDecoder(f).Decode(data); err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}

	return nil
}
