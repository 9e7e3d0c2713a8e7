package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/milk9111/bastion/ecs/component"
)

const DefaultPath = "bastion_save.json"

// Store keeps the defender's progress in a JSON file between runs.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Save writes state atomically.
func (s *Store) Save(state component.GameState) error {
	if s == nil {
		return nil
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("save: marshal: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save: mkdir %s: %w", dir, err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("save: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("save: rename %s: %w", s.path, err)
	}
	return nil
}

// Load returns the saved state, or nil with no error when there is none.
func (s *Store) Load() (*component.GameState, error) {
	if s == nil {
		return nil, nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("save: read %s: %w", s.path, err)
	}
	var state component.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("save: decode %s: %w", s.path, err)
	}
	if state.CurrentWave <= 0 {
		return nil, nil
	}
	return &state, nil
}

// Clear removes the save file. A missing file is not an error.
func (s *Store) Clear() error {
	if s == nil {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("save: remove %s: %w", s.path, err)
	}
	return nil
}
