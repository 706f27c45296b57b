package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"
)

// Request describes one outbound HTTP request.
type Request struct {
	Method  string
	Headers map[string]string
	Body    []byte
}

// Response is the outcome of an exchange. Non-2xx statuses are returned
// as responses, not errors, so callers can read remote error bodies.
type Response struct {
	Status     int
	StatusText string
	Body       []byte

	// Cached is true when Body was served from the cache.
	Cached bool
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Fetcher performs a request against url, bounded by timeout. An error
// means no response was obtained (transport failure or timeout).
type Fetcher interface {
	Fetch(ctx context.Context, url string, req *Request, timeout time.Duration) (*Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string, req *Request, timeout time.Duration) (*Response, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string, req *Request, timeout time.Duration) (*Response, error) {
	return f(ctx, url, req, timeout)
}

// Key derives the cache key of a request: SHA-256 over method, URL,
// headers in sorted order and body.
func Key(url string, req *Request) string {
	h := sha256.New()
	h.Write([]byte(req.Method))
	h.Write([]byte{0})
	h.Write([]byte(url))
	h.Write([]byte{0})

	names := make([]string, 0, len(req.Headers))
	for k := range req.Headers {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		h.Write([]byte(k))
		h.Write([]byte{':'})
		h.Write([]byte(req.Headers[k]))
		h.Write([]byte{0})
	}

	h.Write(req.Body)
	return hex.EncodeToString(h.Sum(nil))
}
