package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type migration struct {
	version int
	name    string
}

// pendingMigrations lists embedded migrations ordered by version. Files
// are named "<version>_<description>.sql".
func pendingMigrations() ([]migration, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	out := make([]migration, 0, len(names))
	for _, name := range names {
		base := strings.TrimPrefix(name, "migrations/")
		prefix, _, ok := strings.Cut(base, "_")
		if !ok {
			return nil, fmt.Errorf("migration %s: missing version prefix", base)
		}
		v, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s: invalid version: %w", base, err)
		}
		out = append(out, migration{version: v, name: name})
	}
	slices.SortFunc(out, func(a, b migration) int { return a.version - b.version })
	return out, nil
}

// migrate applies every migration not yet recorded in schema_migrations
// within a single transaction.
func (s *Store) migrate(ctx context.Context) error {
	all, err := pendingMigrations()
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		// Migration 001 is idempotent and creates the tracking table itself.
		applied := map[int]bool{}
		var exists bool
		if err := tx.QueryRow(ctx, "SELECT to_regclass('schema_migrations') IS NOT NULL").Scan(&exists); err != nil {
			return fmt.Errorf("checking schema_migrations: %w", err)
		}
		if exists {
			rows, err := tx.Query(ctx, "SELECT version FROM schema_migrations")
			if err != nil {
				return fmt.Errorf("listing applied migrations: %w", err)
			}
			versions, err := pgx.CollectRows(rows, pgx.RowTo[int])
			if err != nil {
				return fmt.Errorf("listing applied migrations: %w", err)
			}
			for _, v := range versions {
				applied[v] = true
			}
		}

		for _, m := range all {
			if applied[m.version] {
				continue
			}
			sql, err := migrationFiles.ReadFile(m.name)
			if err != nil {
				return fmt.Errorf("reading %s: %w", m.name, err)
			}
			slog.Info("applying cache migration", "file", m.name, "version", m.version)
			if _, err := tx.Exec(ctx, string(sql)); err != nil {
				return fmt.Errorf("applying %s: %w", m.name, err)
			}
			if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
				return fmt.Errorf("recording %s: %w", m.name, err)
			}
		}
		return nil
	})
}
