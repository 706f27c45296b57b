package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhuss/evalkit/pkg/cache"
	"github.com/rhuss/evalkit/pkg/cache/memory"
	"github.com/rhuss/evalkit/pkg/cache/postgres"
	"github.com/rhuss/evalkit/pkg/cache/redis"
	"github.com/rhuss/evalkit/pkg/config"
)

// NewStore creates the cache store named by cfg.Type. It returns a nil
// store when caching is disabled.
func NewStore(ctx context.Context, cfg config.CacheConfig) (cache.Store, error) {
	if !cfg.Enabled {
		slog.Info("response cache disabled")
		return nil, nil
	}

	switch cfg.Type {
	case cache.BackendMemory, "":
		slog.Info("response cache enabled", "type", "memory", "max_size", cfg.MaxSize)
		return memory.New(cfg.MaxSize), nil

	case cache.BackendPostgres:
		store, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
			PruneInterval:  cfg.Postgres.PruneInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("creating postgres cache: %w", err)
		}
		slog.Info("response cache enabled", "type", "postgres")
		return store, nil

	case cache.BackendRedis:
		store, err := redis.New(ctx, redis.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("creating redis cache: %w", err)
		}
		slog.Info("response cache enabled", "type", "redis", "addr", cfg.Redis.Addr)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}
