// Package catalog holds the static list of Databricks-served models and
// their per-token prices. Entries are seeded at startup, optionally
// overlaid from a YAML file, and only read afterwards.
package catalog
