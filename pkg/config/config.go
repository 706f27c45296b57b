// Package config provides unified configuration for evalkit.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (EVALKIT_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import (
	"time"

	"github.com/rhuss/evalkit/pkg/fetch"
	"github.com/rhuss/evalkit/pkg/provider/databricks"
)

// Config holds all configuration for evalkit.
type Config struct {
	Providers []ProviderConfig `yaml:"providers"`

	// Env is the environment override map handed to providers. Values
	// here take precedence over the process environment for base URL,
	// token and generation defaults.
	Env map[string]string `yaml:"env"`

	Cache         CacheConfig         `yaml:"cache"`
	Fetch         FetchConfig         `yaml:"fetch"`
	CatalogFile   string              `yaml:"catalog_file"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ProviderConfig describes one configured provider.
type ProviderConfig struct {
	// ID selects the provider, e.g. "databricks:databricks-dbrx-instruct"
	// or "databricks:chat:my-endpoint".
	ID string `yaml:"id" json:"id"`

	// Label overrides the id the provider reports.
	Label string `yaml:"label" json:"label,omitempty"`

	// APIKeyFile is the _file variant for config.api_key.
	APIKeyFile string `yaml:"api_key_file" json:"api_key_file,omitempty"`

	Config databricks.Config `yaml:"config" json:"config"`
}

// CacheConfig holds fetch cache settings.
type CacheConfig struct {
	Enabled  bool                `yaml:"enabled"`  // default: true
	Type     string              `yaml:"type"`     // "memory", "postgres" or "redis", default: "memory"
	TTL      time.Duration       `yaml:"ttl"`      // default: 14 days
	MaxSize  int                 `yaml:"max_size"` // for memory store, default: 10000
	Postgres PostgresCacheConfig `yaml:"postgres"`
	Redis    RedisCacheConfig    `yaml:"redis"`
}

// PostgresCacheConfig holds PostgreSQL-specific settings.
type PostgresCacheConfig struct {
	DSN            string        `yaml:"dsn"`
	DSNFile        string        `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32         `yaml:"max_conns"`        // default: 10
	MigrateOnStart bool          `yaml:"migrate_on_start"` // default: false
	PruneInterval  time.Duration `yaml:"prune_interval"`   // default: 1h, 0 disables
}

// RedisCacheConfig holds Redis-specific settings.
type RedisCacheConfig struct {
	Addr         string `yaml:"addr"` // default: "localhost:6379"
	Password     string `yaml:"password"`
	PasswordFile string `yaml:"password_file"` // _file variant for password
	DB           int    `yaml:"db"`
	KeyPrefix    string `yaml:"key_prefix"` // default: "evalkit:fetch:"
}

// FetchConfig holds backend request retry settings.
type FetchConfig struct {
	MaxRetries      int           `yaml:"max_retries"`      // default: 4
	InitialInterval time.Duration `yaml:"initial_interval"` // default: 500ms
	MaxInterval     time.Duration `yaml:"max_interval"`     // default: 10s
}

// LoggingConfig holds log level and debug category settings.
// EVALKIT_DEBUG and EVALKIT_LOG_LEVEL take precedence.
type LoggingConfig struct {
	Level string `yaml:"level"` // default: "INFO"
	Debug string `yaml:"debug"` // comma-separated categories, or "all"
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings. The CLI
// serves metrics while it runs when enabled.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: false
	Addr    string `yaml:"addr"`    // default: ":9090"
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Cache: CacheConfig{
			Enabled: true,
			Type:    "memory",
			TTL:     fetch.DefaultCacheTTL,
			MaxSize: 10000,
			Postgres: PostgresCacheConfig{
				MaxConns:      10,
				PruneInterval: time.Hour,
			},
			Redis: RedisCacheConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "evalkit:fetch:",
			},
		},
		Fetch: FetchConfig{
			MaxRetries:      4,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     10 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Addr: ":9090",
				Path: "/metrics",
			},
		},
	}
}
