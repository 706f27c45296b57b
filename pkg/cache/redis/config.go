package redis

import "time"

// Config holds Redis connection settings.
type Config struct {
	// Addr is host:port of the Redis server (default: "localhost:6379").
	Addr string

	Password string
	DB       int

	// KeyPrefix namespaces cache keys (default: "evalkit:fetch:").
	KeyPrefix string

	// MaxRetries for individual Redis commands (default: 3).
	MaxRetries int

	// DialTimeout bounds connection setup (default: 5s).
	DialTimeout time.Duration
}

func (c *Config) defaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "evalkit:fetch:"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
}
