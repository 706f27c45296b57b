// Package openaicompat provides the wire types and response handling shared
// by OpenAI-compatible Chat Completions backends such as Databricks model
// serving. It covers message translation, output selection, usage and
// log-probability extraction, and remote error formatting.
package openaicompat
