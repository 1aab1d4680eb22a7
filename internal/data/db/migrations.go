package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/colonyops/docket/internal/core/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrSchemaTooNew is returned by Open when the database records a schema
// version this build does not know, meaning a newer docket wrote it.
var ErrSchemaTooNew = errors.New("database schema is newer than this build")

// schemaStep is one forward-only change to the kv_store schema, read from
// migrations/NNNN_name.sql. There are no down steps: the store holds user
// data and is never rolled back.
type schemaStep struct {
	Version int
	Name    string
	SQL     string
}

// schemaSteps returns the embedded steps sorted by version.
func schemaSteps() ([]schemaStep, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	steps := make([]schemaStep, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		version, name, err := parseStepName(entry.Name())
		if err != nil {
			return nil, err
		}

		body, err := fs.ReadFile(migrationsFS, "migrations/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if strings.TrimSpace(string(body)) == "" {
			return nil, fmt.Errorf("migration %s is empty", entry.Name())
		}

		steps = append(steps, schemaStep{Version: version, Name: name, SQL: string(body)})
	}

	slices.SortFunc(steps, func(a, b schemaStep) int { return a.Version - b.Version })
	for i := 1; i < len(steps); i++ {
		if steps[i].Version == steps[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %04d", steps[i].Version)
		}
	}
	return steps, nil
}

// parseStepName splits "0002_kv_store_updated_at_index.sql" into 2 and
// "kv_store_updated_at_index".
func parseStepName(filename string) (int, string, error) {
	base, ok := strings.CutSuffix(filename, ".sql")
	if !ok {
		return 0, "", fmt.Errorf("migration %q: want NNNN_name.sql", filename)
	}

	num, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return 0, "", fmt.Errorf("migration %q: want NNNN_name.sql", filename)
	}

	version, err := strconv.Atoi(num)
	if err != nil || version <= 0 {
		return 0, "", fmt.Errorf("migration %q: version must be a positive integer", filename)
	}
	return version, name, nil
}

// migrate applies every step the database has not seen. A step and its
// schema_migrations row commit in one transaction.
func (db *DB) migrate(ctx context.Context) error {
	steps, err := schemaSteps()
	if err != nil {
		return err
	}

	if _, err := db.x.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := db.schemaVersions(ctx)
	if err != nil {
		return err
	}

	latest := steps[len(steps)-1].Version
	if n := len(applied); n > 0 && applied[n-1] > latest {
		return fmt.Errorf("%w: database is at version %d, this build knows up to %d", ErrSchemaTooNew, applied[n-1], latest)
	}

	log := logging.Component("db")
	for _, step := range steps {
		if slices.Contains(applied, step.Version) {
			continue
		}

		log.Info().Int("version", step.Version).Str("name", step.Name).Msg("applying schema step")
		err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
				step.Version, step.Name, time.Now().UnixNano())
			return err
		})
		if err != nil {
			return fmt.Errorf("schema step %04d (%s): %w", step.Version, step.Name, err)
		}
	}
	return nil
}

// schemaVersions returns the applied schema versions in ascending order.
func (db *DB) schemaVersions(ctx context.Context) ([]int, error) {
	var versions []int
	if err := db.x.SelectContext(ctx, &versions, "SELECT version FROM schema_migrations ORDER BY version"); err != nil {
		return nil, fmt.Errorf("read schema versions: %w", err)
	}
	return versions, nil
}
