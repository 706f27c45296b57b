package config

import (
	"errors"
	"fmt"

	"github.com/rhuss/evalkit/pkg/provider/databricks"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// providers[*].id must parse and be unique.
	seen := make(map[string]int, len(c.Providers))
	for i, p := range c.Providers {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("providers[%d].id is required", i))
			continue
		}
		if _, _, err := databricks.ParseID(p.ID); err != nil {
			errs = append(errs, fmt.Errorf("providers[%d].id: %w", i, err))
		}
		key := p.ID
		if p.Label != "" {
			key = p.Label
		}
		if j, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("providers[%d] duplicates providers[%d] (%q)", i, j, key))
		}
		seen[key] = i

		if p.Config.Cost != nil && *p.Config.Cost < 0 {
			errs = append(errs, fmt.Errorf("providers[%d].config.cost must be >= 0", i))
		}
		if p.Config.Timeout < 0 {
			errs = append(errs, fmt.Errorf("providers[%d].config.timeout must be >= 0", i))
		}
	}

	// cache.type must be a known value.
	switch c.Cache.Type {
	case "memory", "postgres", "redis":
		// valid
	default:
		errs = append(errs, fmt.Errorf("cache.type must be \"memory\", \"postgres\", or \"redis\", got %q", c.Cache.Type))
	}

	// If cache.type is "postgres", DSN or DSNFile must be set.
	if c.Cache.Enabled && c.Cache.Type == "postgres" {
		if c.Cache.Postgres.DSN == "" && c.Cache.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("cache.postgres.dsn or cache.postgres.dsn_file is required when cache.type is \"postgres\""))
		}
	}

	if c.Cache.Enabled && c.Cache.Type == "redis" && c.Cache.Redis.Addr == "" {
		errs = append(errs, fmt.Errorf("cache.redis.addr is required when cache.type is \"redis\""))
	}

	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be >= 0, got %v", c.Cache.TTL))
	}
	if c.Cache.Postgres.PruneInterval < 0 {
		errs = append(errs, fmt.Errorf("cache.postgres.prune_interval must be >= 0, got %v", c.Cache.Postgres.PruneInterval))
	}
	if c.Cache.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("cache.max_size must be >= 0, got %d", c.Cache.MaxSize))
	}

	if c.Fetch.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("fetch.max_retries must be >= 0, got %d", c.Fetch.MaxRetries))
	}

	if c.Observability.Metrics.Enabled && c.Observability.Metrics.Addr == "" {
		errs = append(errs, fmt.Errorf("observability.metrics.addr is required when metrics are enabled"))
	}

	return errors.Join(errs...)
}
