package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// Blob provides typed JSON access to a single key of a KV store.
type Blob[T any] struct {
	store KV
	key   string
}

// NewBlob returns a Blob[T] bound to key.
func NewBlob[T any](store KV, key string) *Blob[T] {
	return &Blob[T]{store: store, key: key}
}

// Key returns the bound key.
func (b *Blob[T]) Key() string {
	return b.key
}

// Get reads and decodes the value. Absent keys return an error wrapping
// ErrNotFound.
func (b *Blob[T]) Get(ctx context.Context) (T, error) {
	var v T
	raw, err := b.store.Get(ctx, b.key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, fmt.Errorf("kv blob %q unmarshal: %w", b.key, err)
	}
	return v, nil
}

// Set encodes and stores value.
func (b *Blob[T]) Set(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv blob %q marshal: %w", b.key, err)
	}
	return b.store.Set(ctx, b.key, string(data))
}

// Remove deletes the key.
func (b *Blob[T]) Remove(ctx context.Context) error {
	return b.store.Remove(ctx, b.key)
}
