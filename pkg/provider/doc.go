// Package provider defines the interface an evaluation harness uses to
// invoke a model backend. Each adapter (e.g., databricks) resolves its own
// endpoint, credentials and wire protocol internally and reports every
// outcome as an api.InvocationResult.
package provider
