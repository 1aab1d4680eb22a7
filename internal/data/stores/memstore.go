package stores

import (
	"context"
	"fmt"

	"github.com/colonyops/docket/internal/core/kv"
	kvmap "github.com/colonyops/docket/pkg/kv"
)

// MemoryStore implements kv.KV in process memory. Nothing survives a restart.
type MemoryStore struct {
	data *kvmap.Store[string, string]
}

var _ kv.KV = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: kvmap.New[string, string]()}
}

// Get returns the value for key.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := s.data.Get(key)
	if !ok {
		return "", fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	return v, nil
}

// Set stores value under key.
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.data.Set(key, value)
	return nil
}

// Remove deletes key.
func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.data.Delete(key)
	return nil
}

// ListKeys returns all keys in sorted order.
func (s *MemoryStore) ListKeys(ctx context.Context) ([]string, error) {
	return s.data.Keys(), nil
}
