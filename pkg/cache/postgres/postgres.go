// Package postgres provides a PostgreSQL-backed cache.Store so cached
// backend responses survive restarts and can be shared between workers.
// It uses pgx/v5 connection pooling and a single fetch_cache table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhuss/evalkit/pkg/cache"
)

// Store is a PostgreSQL-backed cache.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ cache.Store = (*Store)(nil)

// New creates a new PostgreSQL store. If MigrateOnStart is true, schema
// migrations are applied before returning.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool, now: time.Now}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	if cfg.PruneInterval > 0 {
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		go s.pruneLoop(cfg.PruneInterval)
	}

	return s, nil
}

func (s *Store) pruneLoop(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			n, err := s.Prune(ctx)
			cancel()
			if err != nil {
				slog.Warn("pruning postgres cache failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("pruned expired cache entries", "rows", n)
			}
		}
	}
}

// Get returns the cached value for key. Expired rows are reported as misses
// and left for Prune.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `
		SELECT value FROM fetch_cache
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)
	`, key, s.now()).Scan(&value)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying cache entry: %w", err)
	}
	return value, nil
}

// Set upserts value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := s.now().Add(ttl)
		expiresAt = &t
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO fetch_cache (key, value, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at
	`, key, value, expiresAt, s.now())
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM fetch_cache WHERE key = $1", key); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Clear removes all cached entries.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM fetch_cache"); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Prune deletes expired rows and returns how many were removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	result, err := s.pool.Exec(ctx,
		"DELETE FROM fetch_cache WHERE expires_at IS NOT NULL AND expires_at <= $1", s.now())
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return result.RowsAffected(), nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close stops background pruning and releases the connection pool.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.stop != nil {
			close(s.stop)
			<-s.done
		}
		s.pool.Close()
	})
	return nil
}
