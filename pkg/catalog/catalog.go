package catalog

import (
	"fmt"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// TokenCost is a per-token price in USD.
type TokenCost struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// Entry describes one model. Cost is nil for models without published pricing.
type Entry struct {
	ID   string     `yaml:"id"`
	Cost *TokenCost `yaml:"cost,omitempty"`
}

// Catalog is an immutable-after-construction set of entries keyed by id.
type Catalog struct {
	entries map[string]Entry
}

// defaultEntries seeds the catalog. Rates are USD per token.
var defaultEntries = []Entry{
	{ID: "databricks-dbrx-instruct", Cost: &TokenCost{Input: 0.0008 / 1000, Output: 0.0024 / 1000}},
	{ID: "databricks-meta-llama-3-70b-instruct", Cost: &TokenCost{Input: 0.001 / 1000, Output: 0.003 / 1000}},
	{ID: "databricks-meta-llama-3-1-70b-instruct", Cost: &TokenCost{Input: 0.001 / 1000, Output: 0.003 / 1000}},
	{ID: "databricks-meta-llama-3-1-405b-instruct", Cost: &TokenCost{Input: 0.005 / 1000, Output: 0.015 / 1000}},
	{ID: "databricks-mixtral-8x7b-instruct", Cost: &TokenCost{Input: 0.0005 / 1000, Output: 0.001 / 1000}},
	{ID: "databricks-llama-2-70b-chat", Cost: &TokenCost{Input: 0.0005 / 1000, Output: 0.0015 / 1000}},
	{ID: "databricks-mpt-30b-instruct", Cost: &TokenCost{Input: 0.001 / 1000, Output: 0.001 / 1000}},
	{ID: "databricks-mpt-7b-instruct", Cost: &TokenCost{Input: 0.0005 / 1000, Output: 0.0005 / 1000}},
	{ID: "databricks-bge-large-en"},
}

// New builds a catalog from the given entries. Later entries with the same
// id replace earlier ones.
func New(entries ...Entry) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		c.entries[e.ID] = e
	}
	return c
}

// Default returns a catalog seeded with the built-in Databricks models.
func Default() *Catalog {
	return New(defaultEntries...)
}

// file is the on-disk layout of a catalog YAML file.
type file struct {
	Models []Entry `yaml:"models"`
}

// LoadFile reads a YAML catalog file of the form:
//
//	models:
//	  - id: databricks-dbrx-instruct
//	    cost: {input: 0.0000008, output: 0.0000024}
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	for i, e := range f.Models {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog %s: models[%d].id is required", path, i)
		}
	}
	return f.Models, nil
}

// Merge returns a new catalog with extra entries overlaid by id.
func (c *Catalog) Merge(extra ...Entry) *Catalog {
	all := make([]Entry, 0, len(c.entries)+len(extra))
	for _, e := range c.entries {
		all = append(all, e)
	}
	return New(append(all, extra...)...)
}

// Lookup returns the entry with exactly the given id.
func (c *Catalog) Lookup(id string) (Entry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// IDs returns all model ids in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Entries returns all entries sorted by id.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, id := range c.IDs() {
		out = append(out, c.entries[id])
	}
	return slices.Clip(out)
}

// Cost estimates the USD cost of a call. It returns nil when the model is
// unknown, has no pricing, or either token count is zero. A non-nil
// override replaces both the input and the output rate. A computed cost of
// exactly zero is also reported as nil.
func (c *Catalog) Cost(model string, override *float64, promptTokens, completionTokens int) *float64 {
	if promptTokens == 0 || completionTokens == 0 {
		return nil
	}
	e, ok := c.Lookup(model)
	if !ok || e.Cost == nil {
		return nil
	}

	inputRate, outputRate := e.Cost.Input, e.Cost.Output
	if override != nil {
		inputRate, outputRate = *override, *override
	}

	cost := inputRate*float64(promptTokens) + outputRate*float64(completionTokens)
	if cost == 0 {
		return nil
	}
	return &cost
}
