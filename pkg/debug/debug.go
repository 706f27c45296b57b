// Package debug gates verbose logging by category.
//
// Categories select WHAT is logged (EVALKIT_DEBUG or logging.debug):
// providers, fetch, cache, config, or all. The slog level selects HOW
// MUCH (EVALKIT_LOG_LEVEL or logging.level): ERROR, WARN, INFO, DEBUG,
// TRACE. Request and response bodies are previewed at DEBUG and written
// in full at TRACE.
//
//	debug.Log("fetch", "sending request", "url", url)
//	debug.Body("providers", "response body", body)
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync/atomic"
)

// LevelTrace sits below slog.LevelDebug.
const LevelTrace = slog.LevelDebug - 4

const (
	envCategories = "EVALKIT_DEBUG"
	envLevel      = "EVALKIT_LOG_LEVEL"

	// previewBytes bounds bodies logged below TRACE.
	previewBytes = 512
)

var levels = map[string]slog.Level{
	"TRACE":   LevelTrace,
	"DEBUG":   slog.LevelDebug,
	"INFO":    slog.LevelInfo,
	"WARN":    slog.LevelWarn,
	"WARNING": slog.LevelWarn,
	"ERROR":   slog.LevelError,
}

// state is replaced as a whole by Setup.
type state struct {
	categories map[string]bool
	raw        io.Writer
}

var current atomic.Pointer[state]

func init() {
	current.Store(&state{categories: parseCategories(os.Getenv(envCategories)), raw: os.Stderr})
}

// Init configures categories and the default slog handler on stderr.
// EVALKIT_DEBUG and EVALKIT_LOG_LEVEL override the given values.
func Init(categories, level string) {
	Setup(os.Stderr, categories, level)
}

// Setup is Init with an explicit destination for logs and raw bodies.
func Setup(w io.Writer, categories, level string) {
	if v := os.Getenv(envCategories); v != "" {
		categories = v
	}
	if v := os.Getenv(envLevel); v != "" {
		level = v
	}

	current.Store(&state{categories: parseCategories(categories), raw: w})
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})))
}

// Enabled reports whether category is switched on.
func Enabled(category string) bool {
	cats := current.Load().categories
	return cats["all"] || cats[category]
}

// Log emits msg at DEBUG when category is enabled.
func Log(category, msg string, args ...any) {
	if Enabled(category) {
		slog.Debug(msg, withCategory(category, args)...)
	}
}

// Trace emits msg at TRACE when category is enabled.
func Trace(category, msg string, args ...any) {
	if Enabled(category) {
		slog.Log(context.Background(), LevelTrace, msg, withCategory(category, args)...)
	}
}

// TraceIsEnabled reports whether category is enabled and the logger
// accepts TRACE records.
func TraceIsEnabled(category string) bool {
	return Enabled(category) && slog.Default().Enabled(context.Background(), LevelTrace)
}

// Body logs a payload: a truncated preview below TRACE, the full text
// at TRACE.
func Body(category, msg string, body []byte) {
	switch {
	case !Enabled(category):
	case TraceIsEnabled(category):
		Trace(category, msg, "bytes", len(body))
		Raw(category, string(body))
	default:
		Log(category, msg, "bytes", len(body), "body", Truncate(string(body), previewBytes))
	}
}

// Raw writes text unformatted, only at TRACE.
func Raw(category, text string) {
	if !TraceIsEnabled(category) {
		return
	}
	w := current.Load().raw
	io.WriteString(w, text)
	io.WriteString(w, "\n")
}

// ParseLevel maps a level name to a slog.Level. Unknown names are INFO.
func ParseLevel(s string) slog.Level {
	if l, ok := levels[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return l
	}
	return slog.LevelInfo
}

// Categories returns the enabled categories, sorted.
func Categories() []string {
	cats := current.Load().categories
	out := make([]string, 0, len(cats))
	for c := range cats {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Truncate cuts s to maxLen bytes and appends "..." when it was longer.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func withCategory(category string, args []any) []any {
	return append([]any{"debug", category}, args...)
}

func parseCategories(s string) map[string]bool {
	m := map[string]bool{}
	for _, c := range strings.Split(s, ",") {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			m[c] = true
		}
	}
	return m
}
