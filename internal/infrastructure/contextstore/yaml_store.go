// Package contextstore mirrors custom keyword contexts to a YAML file.
package contextstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"RecipeScanner/internal/domain"
	"RecipeScanner/internal/ports"
)

// YAMLStore keeps contexts in one file keyed by domain.
type YAMLStore struct {
	path string
	mu   sync.Mutex
}

var _ ports.ContextStore = (*YAMLStore)(nil)

func NewYAMLStore(path string) *YAMLStore {
	return &YAMLStore{path: path}
}

// Load returns an empty map when the file does not exist yet.
func (s *YAMLStore) Load() (map[string]domain.CustomContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]domain.CustomContext{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read contexts: %w", err)
	}

	out := map[string]domain.CustomContext{}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse contexts %s: %w", s.path, err)
	}
	return out, nil
}

// Save replaces the file through a temp file rename.
func (s *YAMLStore) Save(contexts map[string]domain.CustomContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := yaml.Marshal(contexts)
	if err != nil {
		return fmt.Errorf("encode contexts: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".contexts-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write contexts: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close contexts: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
