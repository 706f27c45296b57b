package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rhuss/evalkit/pkg/debug"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, EVALKIT_CONFIG env, ./evalkit.yaml, /etc/evalkit/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		debug.Log("config", "loading config file", "path", filePath)
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. EVALKIT_CONFIG environment variable
// 3. ./evalkit.yaml in the current directory
// 4. /etc/evalkit/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("EVALKIT_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"evalkit.yaml",
		"/etc/evalkit/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps EVALKIT_* environment variables to config fields.
// Malformed numeric, boolean or duration values are reported as errors.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("EVALKIT_CACHE_TYPE"); v != "" {
		cfg.Cache.Type = v
	}
	if v := os.Getenv("EVALKIT_CACHE_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("EVALKIT_CACHE_ENABLED: %w", err)
		}
		cfg.Cache.Enabled = b
	}
	if v := os.Getenv("EVALKIT_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("EVALKIT_CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = d
	}
	if v := os.Getenv("EVALKIT_CACHE_MAX_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EVALKIT_CACHE_MAX_SIZE: %w", err)
		}
		cfg.Cache.MaxSize = n
	}
	if v := os.Getenv("EVALKIT_POSTGRES_DSN"); v != "" {
		cfg.Cache.Postgres.DSN = v
	}
	if v := os.Getenv("EVALKIT_REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("EVALKIT_REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v := os.Getenv("EVALKIT_FETCH_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EVALKIT_FETCH_MAX_RETRIES: %w", err)
		}
		cfg.Fetch.MaxRetries = n
	}
	if v := os.Getenv("EVALKIT_CATALOG_FILE"); v != "" {
		cfg.CatalogFile = v
	}
	if v := os.Getenv("EVALKIT_METRICS_ADDR"); v != "" {
		cfg.Observability.Metrics.Enabled = true
		cfg.Observability.Metrics.Addr = v
	}

	// EVALKIT_PROVIDERS: JSON array of provider configs.
	if v := os.Getenv("EVALKIT_PROVIDERS"); v != "" {
		providers, err := parseProvidersJSON(v)
		if err != nil {
			return err
		}
		if len(providers) > 0 {
			cfg.Providers = providers
		}
	}

	return nil
}

// parseProvidersJSON parses a JSON array of provider configurations.
func parseProvidersJSON(jsonStr string) ([]ProviderConfig, error) {
	var providers []ProviderConfig
	if err := json.Unmarshal([]byte(jsonStr), &providers); err != nil {
		return nil, fmt.Errorf("parsing providers JSON: %w", err)
	}
	return providers, nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// providers[*].api_key_file -> providers[*].config.api_key
	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		if p.APIKeyFile != "" && p.Config.APIKey == "" {
			val, err := readSecretFile(p.APIKeyFile)
			if err != nil {
				return fmt.Errorf("providers[%d].api_key_file: %w", i, err)
			}
			p.Config.APIKey = val
		}
	}

	// cache.postgres.dsn_file -> cache.postgres.dsn
	if cfg.Cache.Postgres.DSNFile != "" && cfg.Cache.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Cache.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("cache.postgres.dsn_file: %w", err)
		}
		cfg.Cache.Postgres.DSN = val
	}

	// cache.redis.password_file -> cache.redis.password
	if cfg.Cache.Redis.PasswordFile != "" && cfg.Cache.Redis.Password == "" {
		val, err := readSecretFile(cfg.Cache.Redis.PasswordFile)
		if err != nil {
			return fmt.Errorf("cache.redis.password_file: %w", err)
		}
		cfg.Cache.Redis.Password = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
