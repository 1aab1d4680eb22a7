package stores

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/docket/internal/core/config"
	"github.com/colonyops/docket/internal/core/kv"
	"github.com/colonyops/docket/internal/data/db"
)

// Opened is a backend selected from configuration.
type Opened struct {
	KV kv.KV
	// File is set for the file backend so callers can watch it.
	File *FileStore
	// Close releases the backend's connections.
	Close func() error
}

// Open creates the backend selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config) (*Opened, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		database, err := openSQLite(cfg)
		if err != nil {
			return nil, err
		}
		return &Opened{KV: NewSQLiteStore(database), Close: database.Close}, nil

	case config.BackendFile:
		fs := NewFileStore(cfg.Storage.File)
		return &Opened{KV: fs, File: fs, Close: func() error { return nil }}, nil

	case config.BackendRedis:
		rc := cfg.Storage.Redis
		client := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			DB:       rc.DB,
			Password: rc.Password,
		})
		store := NewRedisStore(client, rc.Prefix)
		if err := store.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", rc.Addr, err)
		}
		return &Opened{KV: store, Close: client.Close}, nil

	case config.BackendMemory:
		return &Opened{KV: NewMemoryStore(), Close: func() error { return nil }}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// openSQLite opens the database, moving a corrupted file aside and starting
// fresh when SQLite reports corruption.
func openSQLite(cfg *config.Config) (*db.DB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	opts := db.DefaultOpenOptions()
	if cfg.Storage.Database.MaxOpenConns > 0 {
		opts.MaxOpenConns = cfg.Storage.Database.MaxOpenConns
	}
	if cfg.Storage.Database.BusyTimeout > 0 {
		opts.BusyTimeout = cfg.Storage.Database.BusyTimeout
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil {
		return database, nil
	}
	if !IsCorruptionError(err) {
		return nil, fmt.Errorf("open database: %w", err)
	}

	log.Warn().Err(err).Str("data_dir", cfg.DataDir).Msg("database corrupted, moving it aside")
	if rerr := RecoverFromCorruption(cfg.DataDir); rerr != nil {
		return nil, fmt.Errorf("recover database: %w", rerr)
	}

	database, err = db.Open(cfg.DataDir, opts)
	if err != nil {
		return nil, fmt.Errorf("open database after recovery: %w", err)
	}
	return database, nil
}
