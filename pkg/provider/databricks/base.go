package databricks

import (
	"context"
	"os"
	"strings"

	"github.com/rhuss/evalkit/pkg/api"
	"github.com/rhuss/evalkit/pkg/catalog"
	"github.com/rhuss/evalkit/pkg/fetch"
	"github.com/rhuss/evalkit/pkg/provider"
)

// Options configures a Databricks provider at construction.
type Options struct {
	Config Config

	// ID overrides the identifier returned by ID.
	ID string

	// Env is an environment override map consulted before the process
	// environment (e.g., values from a harness config file).
	Env map[string]string

	// LookupEnv reads the process environment (default: os.LookupEnv).
	LookupEnv func(string) (string, bool)

	// Fetcher performs backend requests (default: a shared cached client).
	Fetcher fetch.Fetcher

	// Catalog prices token usage (default: catalog.Default()).
	Catalog *catalog.Catalog
}

// Base resolves the connection settings shared by Databricks providers.
// It is immutable after construction and safe for concurrent use.
type Base struct {
	model     string
	id        string
	cfg       Config
	env       map[string]string
	lookupEnv func(string) (string, bool)
}

var _ provider.Provider = (*Base)(nil)

// NewBase creates a Base for model.
func NewBase(model string, opts Options) *Base {
	lookupEnv := opts.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	return &Base{
		model:     model,
		id:        opts.ID,
		cfg:       opts.Config,
		env:       opts.Env,
		lookupEnv: lookupEnv,
	}
}

// Model returns the served model name.
func (b *Base) Model() string {
	return b.model
}

// Config returns the provider configuration.
func (b *Base) Config() Config {
	return b.cfg
}

// BaseURL returns the endpoint base URL without a trailing slash.
func (b *Base) BaseURL() string {
	return b.baseURL(b.cfg)
}

// APIKey returns the configured API key and whether one was found.
func (b *Base) APIKey() (string, bool) {
	return b.apiKey(b.cfg)
}

// ID returns the explicit id if one was given, the bare model name for a
// dedicated deployment (api_host or api_base_url set), and otherwise
// "databricks:<model>".
func (b *Base) ID() string {
	if b.id != "" {
		return b.id
	}
	if b.cfg.APIHost != "" || b.cfg.APIBaseURL != "" {
		return b.model
	}
	return "databricks:" + b.model
}

// String renders the provider for display.
func (b *Base) String() string {
	return "[Databricks Provider " + b.model + "]"
}

// Invoke is not supported by the base provider.
func (b *Base) Invoke(_ context.Context, _ string, _ *provider.CallContext, _ *provider.InvokeOptions) (*api.InvocationResult, error) {
	return nil, api.NewNotImplementedError("Databricks provider " + b.model + " does not implement invoke; use a chat provider")
}

func (b *Base) baseURL(cfg Config) string {
	var u string
	switch {
	case cfg.APIHost != "":
		u = "https://" + cfg.APIHost
	case cfg.APIBaseURL != "":
		u = cfg.APIBaseURL
	default:
		if v, ok := b.lookup(EnvBaseURL); ok {
			u = v
		} else {
			u = DefaultBaseURL
		}
	}
	return strings.TrimRight(u, "/")
}

func (b *Base) apiKey(cfg Config) (string, bool) {
	if cfg.APIKey != "" {
		return cfg.APIKey, true
	}
	if name := cfg.APIKeyEnvar; name != "" {
		if v, ok := b.lookupEnv(name); ok && v != "" {
			return v, true
		}
		if v := b.env[name]; v != "" {
			return v, true
		}
	}
	return b.lookup(EnvToken)
}
