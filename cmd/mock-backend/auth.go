package main

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"
)

// tokenChecker validates bearer tokens. An empty expected token accepts
// any non-empty bearer token.
type tokenChecker struct {
	hash  [32]byte
	empty bool
}

func newTokenChecker(token string) tokenChecker {
	return tokenChecker{hash: sha256.Sum256([]byte(token)), empty: token == ""}
}

// check returns the presented token and whether it is accepted.
func (c tokenChecker) check(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	if c.empty {
		return token, true
	}
	got := sha256.Sum256([]byte(token))
	return token, subtle.ConstantTimeCompare(got[:], c.hash[:]) == 1
}

// limiter is a fixed-window per-token request limiter. A zero rpm
// disables limiting.
type limiter struct {
	rpm int
	now func() time.Time

	mu       sync.Mutex
	counters map[string]*window
}

type window struct {
	count int
	start time.Time
}

func newLimiter(rpm int) *limiter {
	return &limiter{rpm: rpm, now: time.Now, counters: make(map[string]*window)}
}

// allow records one request for key and reports whether it is within
// the limit.
func (l *limiter) allow(key string) bool {
	if l == nil || l.rpm <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.counters[key]
	if !ok || now.Sub(w.start) >= time.Minute {
		l.counters[key] = &window{count: 1, start: now}
		return true
	}
	w.count++
	return w.count <= l.rpm
}
