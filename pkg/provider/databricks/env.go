package databricks

import (
	"strconv"
	"time"
)

// DefaultBaseURL is used when no host, base URL or environment override
// is configured.
const DefaultBaseURL = "https://api.databricks.com/serving-endpoints"

// DefaultRequestTimeout bounds a chat completion exchange.
const DefaultRequestTimeout = 300 * time.Second

// Environment variables consulted by Databricks providers.
const (
	EnvBaseURL          = "DATABRICKS_BASE_URL"
	EnvToken            = "DATABRICKS_TOKEN"
	EnvMaxTokens        = "DATABRICKS_MAX_TOKENS"
	EnvTemperature      = "DATABRICKS_TEMPERATURE"
	EnvTopP             = "DATABRICKS_TOP_P"
	EnvPresencePenalty  = "DATABRICKS_PRESENCE_PENALTY"
	EnvFrequencyPenalty = "DATABRICKS_FREQUENCY_PENALTY"
)

// Literal generation defaults used when neither config nor environment
// supplies a value.
const (
	defaultMaxTokens        = 1024
	defaultTemperature      = 0.0
	defaultTopP             = 1.0
	defaultPresencePenalty  = 0.0
	defaultFrequencyPenalty = 0.0
)

// lookup reads name from the override map first, then the process
// environment. Empty values count as unset.
func (b *Base) lookup(name string) (string, bool) {
	if v, ok := b.env[name]; ok && v != "" {
		return v, true
	}
	if v, ok := b.lookupEnv(name); ok && v != "" {
		return v, true
	}
	return "", false
}

func (b *Base) envInt(name string, def int) int {
	v, ok := b.lookup(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (b *Base) envFloat(name string, def float64) float64 {
	v, ok := b.lookup(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
