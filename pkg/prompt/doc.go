// Package prompt turns raw prompt text into chat messages and substitutes
// template variables into structured request fields such as function and
// tool definitions.
package prompt
