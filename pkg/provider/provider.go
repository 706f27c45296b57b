package provider

import (
	"context"

	"github.com/rhuss/evalkit/pkg/api"
)

// Provider abstracts a model backend. Implementations must be safe for
// concurrent use by multiple goroutines.
type Provider interface {
	// ID returns the identifier the harness displays and keys results by
	// (e.g., "databricks:databricks-dbrx-instruct").
	ID() string

	// Invoke performs one round trip for prompt. Backend and response
	// failures are reported through InvocationResult.Error; a non-nil
	// error means the provider is misconfigured and no request was sent.
	Invoke(ctx context.Context, prompt string, call *CallContext, opts *InvokeOptions) (*api.InvocationResult, error)
}

// CallContext carries per-call inputs from the harness.
type CallContext struct {
	// Vars are template variables substituted into function and tool
	// definitions before sending.
	Vars map[string]any

	// Config holds prompt-level settings merged over the provider's own
	// configuration for this call only. Keys use the configuration's
	// YAML names (e.g., "temperature", "max_tokens").
	Config map[string]any
}

// InvokeOptions toggles optional response features.
type InvokeOptions struct {
	// IncludeLogProbs requests per-token log probabilities.
	IncludeLogProbs bool
}

// VarsOf returns the template variables of call, tolerating a nil call.
func VarsOf(call *CallContext) map[string]any {
	if call == nil {
		return nil
	}
	return call.Vars
}
