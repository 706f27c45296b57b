// Package fetch performs backend HTTP exchanges on behalf of providers.
//
// The Client retries transient failures with exponential backoff, shares
// one in-flight request among concurrent identical callers, and serves
// repeated requests from a cache.Store. Providers depend only on the
// Fetcher interface.
package fetch
