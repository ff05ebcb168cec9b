package state

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/fsops"
)

// StateStore provides an interface for persisting the registry.
type StateStore interface {
	// Load loads the registry.
	// Returns os.ErrNotExist if nothing has been saved yet.
	Load() (*Registry, error)

	// Save replaces the persisted registry in full. A failed save leaves the
	// previous registry intact.
	Save(reg *Registry) error
}

// FileStateStore implements StateStore using a single JSON file.
type FileStateStore struct {
	fs   fsops.FS
	path string
}

// NewFileStateStore creates a new FileStateStore.
func NewFileStateStore(fs fsops.FS, path string) *FileStateStore {
	return &FileStateStore{
		fs:   fs,
		path: path,
	}
}

// Path returns the state file location.
func (s *FileStateStore) Path() string {
	return s.path
}

// Load loads the registry from the state file.
func (s *FileStateStore) Load() (*Registry, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	return decodeRegistry(data)
}

// Save writes the registry atomically.
func (s *FileStateStore) Save(reg *Registry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := s.fs.AtomicWrite(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	return nil
}

func decodeRegistry(data []byte) (*Registry, error) {
	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	reg.normalize()
	return &reg, nil
}
