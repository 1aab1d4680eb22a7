package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/colonyops/docket/internal/core/kv"
)

// FileStore implements kv.KV as a single JSON object on disk mapping keys to
// values. Writes are read-modify-write under a mutex and replace the file
// atomically.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

var _ kv.KV = (*FileStore)(nil)

// NewFileStore creates a file store at path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value for key.
// Returns an error wrapping kv.ErrNotFound if the key does not exist.
func (s *FileStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.load()
	if err != nil {
		return "", fmt.Errorf("kv get %q: %w", key, err)
	}

	v, ok := data[key]
	if !ok {
		return "", fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	return v, nil
}

// Set stores value under key.
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}

	data[key] = value
	if err := s.save(data); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (s *FileStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return fmt.Errorf("kv remove %q: %w", key, err)
	}

	if _, ok := data[key]; !ok {
		return nil
	}

	delete(data, key)
	if err := s.save(data); err != nil {
		return fmt.Errorf("kv remove %q: %w", key, err)
	}
	return nil
}

// ListKeys returns all keys in sorted order.
func (s *FileStore) ListKeys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	return slices.Sorted(maps.Keys(data)), nil
}

// load reads the store file from disk.
// Returns an empty map if the file doesn't exist.
func (s *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	data := map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return data, nil
}

// save writes the store file to disk atomically.
func (s *FileStore) save(data map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}
