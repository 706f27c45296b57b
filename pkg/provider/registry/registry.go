package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/rhuss/evalkit/pkg/catalog"
	"github.com/rhuss/evalkit/pkg/config"
	"github.com/rhuss/evalkit/pkg/fetch"
	"github.com/rhuss/evalkit/pkg/provider"
	"github.com/rhuss/evalkit/pkg/provider/databricks"
)

// Registry holds the providers built from a configuration. It is
// read-only after New and safe for concurrent use.
type Registry struct {
	// configured maps each id as written in the config to its provider;
	// providers maps the id each provider reports (label or display id).
	configured map[string]provider.Provider
	providers  map[string]provider.Provider
	fetcher   *fetch.Client
	catalog   *catalog.Catalog
	env       map[string]string
	lookupEnv func(string) (string, bool)
}

// Option customizes a Registry.
type Option func(*Registry)

// WithLookupEnv replaces the process environment lookup handed to providers.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(r *Registry) {
		r.lookupEnv = fn
	}
}

// New builds the cache store, fetcher, catalog and every configured
// provider.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Registry, error) {
	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		entries, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
		cat = cat.Merge(entries...)
	}

	store, err := NewStore(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	maxRetries := cfg.Fetch.MaxRetries
	if maxRetries == 0 {
		maxRetries = -1
	}
	backend := ""
	if store != nil {
		backend = cfg.Cache.Type
	}

	r := &Registry{
		configured: make(map[string]provider.Provider, len(cfg.Providers)),
		providers:  make(map[string]provider.Provider, len(cfg.Providers)),
		fetcher: fetch.New(fetch.Config{
			MaxRetries:      maxRetries,
			InitialInterval: cfg.Fetch.InitialInterval,
			MaxInterval:     cfg.Fetch.MaxInterval,
			CacheTTL:        cfg.Cache.TTL,
			CacheBackend:    backend,
		}, store),
		catalog: cat,
		env:     cfg.Env,
	}
	for _, opt := range opts {
		opt(r)
	}

	for i, pc := range cfg.Providers {
		p, err := r.build(pc.ID, pc.Label, pc.Config)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("providers[%d]: %w", i, err)
		}
		// The first entry for a configured id wins; later entries with the
		// same id stay reachable through their labels.
		if _, dup := r.configured[pc.ID]; !dup {
			r.configured[pc.ID] = p
		}
		r.providers[p.ID()] = p
	}

	return r, nil
}

// Get returns the provider configured under id, matching either the id
// written in the config or the id the provider reports. Ids that are not
// configured but parse as Databricks provider ids yield a provider with
// default settings.
func (r *Registry) Get(id string) (provider.Provider, error) {
	if p, ok := r.configured[id]; ok {
		return p, nil
	}
	if p, ok := r.providers[id]; ok {
		return p, nil
	}
	return r.build(id, "", databricks.Config{})
}

// IDs returns the ids of all configured providers in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Catalog returns the model catalog providers price usage with.
func (r *Registry) Catalog() *catalog.Catalog {
	return r.catalog
}

// Close releases the fetcher and its cache store.
func (r *Registry) Close() error {
	return r.fetcher.Close()
}

func (r *Registry) build(id, label string, cfg databricks.Config) (provider.Provider, error) {
	kind, model, err := databricks.ParseID(id)
	if err != nil {
		return nil, err
	}

	opts := databricks.Options{
		Config:    cfg,
		ID:        label,
		Env:       r.env,
		LookupEnv: r.lookupEnv,
		Fetcher:   r.fetcher,
		Catalog:   r.catalog,
	}

	switch kind {
	case databricks.KindCompletion:
		return databricks.NewBase(model, opts), nil
	default:
		return databricks.NewChatProvider(model, opts), nil
	}
}
