package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/docket/internal/core/kv"
	"github.com/colonyops/docket/internal/data/db"
)

const (
	busyRetries   = 3
	busyRetryWait = 50 * time.Millisecond
)

// SQLiteStore implements kv.KV on the kv_store table.
type SQLiteStore struct {
	db *db.DB
}

var _ kv.KV = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite-backed KV store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Entry is a raw kv_store row.
type Entry struct {
	Key       string `db:"key"`
	Value     string `db:"value"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

// Get returns the value for key.
// Returns an error wrapping kv.ErrNotFound if the key does not exist.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.X().GetContext(ctx, &value, "SELECT value FROM kv_store WHERE key = ?", key)
	if IsNotFoundError(err) {
		return "", fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key, keeping the original created_at. A write that
// hits SQLITE_BUSY after the driver's busy timeout is retried a few times.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	var err error
	wait := busyRetryWait
	for attempt := 0; attempt < busyRetries; attempt++ {
		now := time.Now().UnixNano()
		_, err = s.db.X().ExecContext(ctx, `
			INSERT INTO kv_store (key, value, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, value, now, now)
		if err == nil || !IsBusyError(err) {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("kv set %q: %w", key, ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.X().ExecContext(ctx, "DELETE FROM kv_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("kv remove %q: %w", key, err)
	}
	return nil
}

// ListKeys returns all keys in sorted order.
func (s *SQLiteStore) ListKeys(ctx context.Context) ([]string, error) {
	keys := []string{}
	if err := s.db.X().SelectContext(ctx, &keys, "SELECT key FROM kv_store ORDER BY key"); err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	return keys, nil
}

// GetRaw returns the row for key with its timestamps.
// Returns an error wrapping kv.ErrNotFound if the key does not exist.
func (s *SQLiteStore) GetRaw(ctx context.Context, key string) (Entry, error) {
	var e Entry
	err := s.db.X().GetContext(ctx, &e, "SELECT key, value, created_at, updated_at FROM kv_store WHERE key = ?", key)
	if IsNotFoundError(err) {
		return Entry{}, fmt.Errorf("kv get raw %q: %w", key, kv.ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("kv get raw %q: %w", key, err)
	}
	return e, nil
}
