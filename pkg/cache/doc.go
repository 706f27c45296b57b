// Package cache defines the key/value store used by the fetch layer to
// remember successful backend responses, plus shared sentinel errors.
//
// Backends (memory, postgres, redis) live in sub-packages and implement
// [Store]. Values are opaque byte slices; keys are produced by the caller.
package cache
