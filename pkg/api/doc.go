// Package api defines the result and error types shared between evalkit
// providers and the evaluation harness that calls them.
//
// Every provider invocation produces an [InvocationResult]. A result carries
// either an Output (plain text or a structured call object) together with
// token usage, cache and cost information, or an Error string. Never both.
//
// Core types:
//   - [InvocationResult]: uniform outcome of a single provider call
//   - [TokenUsage]: normalized prompt/completion/total/cached token counts
//   - [APIError]: categorized error (configuration, transport, remote, response)
//
// The package has no external dependencies and performs no I/O.
package api
