// Package registry assembles providers from configuration. It owns the
// shared response cache and fetcher, loads the model catalog, and
// resolves provider ids to ready-to-use Provider values.
package registry
