package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"

	"github.com/rhuss/evalkit/pkg/cache"
	"github.com/rhuss/evalkit/pkg/debug"
	"github.com/rhuss/evalkit/pkg/observability"
)

// DefaultCacheTTL is how long successful responses stay cached.
const DefaultCacheTTL = 14 * 24 * time.Hour

// DefaultTimeout bounds an exchange when Fetch is given no timeout.
const DefaultTimeout = 5 * time.Minute

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 32 << 20

// Config controls retry and caching behavior.
type Config struct {
	// MaxRetries is the number of retries after the first attempt (default: 4).
	// Negative disables retries.
	MaxRetries int

	// InitialInterval is the first backoff delay (default: 500ms).
	InitialInterval time.Duration

	// MaxInterval caps a single backoff delay (default: 10s).
	MaxInterval time.Duration

	// CacheTTL is the lifetime of cached responses (default: 14 days).
	CacheTTL time.Duration

	// CacheBackend names the store for metrics labels and logs.
	CacheBackend string

	// Transport overrides the HTTP transport. It is wrapped with metrics
	// instrumentation.
	Transport http.RoundTripper
}

func (c *Config) defaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = 4
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialInterval == 0 {
		c.InitialInterval = 500 * time.Millisecond
	}
	if c.MaxInterval == 0 {
		c.MaxInterval = 10 * time.Second
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL
	}
}

// Client is the default Fetcher. It is safe for concurrent use.
type Client struct {
	cfg        Config
	store      cache.Store
	httpClient *http.Client
	group      singleflight.Group
}

var _ Fetcher = (*Client)(nil)

// errRetryableStatus marks a response whose status warrants a retry.
var errRetryableStatus = errors.New("retryable status")

// New creates a Client. A nil store disables caching.
func New(cfg Config, store cache.Store) *Client {
	cfg.defaults()
	return &Client{
		cfg:   cfg,
		store: store,
		httpClient: &http.Client{
			Transport: observability.InstrumentTransport(cfg.Transport),
		},
	}
}

// Fetch serves req from the cache when possible and otherwise performs it,
// retrying transport errors, 429 and 5xx responses.
func (c *Client) Fetch(ctx context.Context, url string, req *Request, timeout time.Duration) (*Response, error) {
	key := Key(url, req)

	if resp, ok := c.lookup(ctx, key); ok {
		return resp, nil
	}

	// The shared exchange outlives any single caller; each caller only
	// stops waiting when its own context ends.
	ch := c.group.DoChan(key, func() (any, error) {
		resp, err := c.do(context.WithoutCancel(ctx), url, req, timeout)
		if err != nil {
			return nil, err
		}
		c.save(context.WithoutCancel(ctx), key, resp)
		return resp, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			debug.Log("fetch", "shared in-flight response", "url", url)
		}
		resp := *res.Val.(*Response)
		return &resp, nil
	}
}

// Close releases the cache store.
func (c *Client) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

func (c *Client) lookup(ctx context.Context, key string) (*Response, bool) {
	if c.store == nil {
		return nil, false
	}

	body, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		observability.CacheLookupsTotal.WithLabelValues("hit").Inc()
		debug.Log("cache", "cache hit", "backend", c.cfg.CacheBackend, "key", key[:12])
		return &Response{
			Status:     http.StatusOK,
			StatusText: http.StatusText(http.StatusOK),
			Body:       body,
			Cached:     true,
		}, true
	case errors.Is(err, cache.ErrNotFound):
		observability.CacheLookupsTotal.WithLabelValues("miss").Inc()
	default:
		observability.CacheLookupsTotal.WithLabelValues("error").Inc()
		slog.Warn("cache lookup failed", "backend", c.cfg.CacheBackend, "error", err)
	}
	return nil, false
}

// save caches successful responses whose body carries no error object.
func (c *Client) save(ctx context.Context, key string, resp *Response) {
	if c.store == nil || !resp.OK() || !cacheable(resp.Body) {
		return
	}
	if err := c.store.Set(ctx, key, resp.Body, c.cfg.CacheTTL); err != nil {
		slog.Warn("cache write failed", "backend", c.cfg.CacheBackend, "error", err)
		return
	}
	debug.Log("cache", "cached response", "backend", c.cfg.CacheBackend, "key", key[:12], "bytes", len(resp.Body))
}

func (c *Client) do(ctx context.Context, url string, req *Request, timeout time.Duration) (*Response, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	var last *Response
	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(req.Body))
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, v := range req.Headers {
			httpReq.Header.Set(k, v)
		}

		debug.Log("fetch", "sending request", "method", method, "url", url)
		debug.Body("fetch", "request body", req.Body)

		httpResp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer httpResp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
		if err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}

		debug.Log("fetch", "received response", "status", httpResp.StatusCode, "bytes", len(body))
		debug.Body("fetch", "response body", body)

		last = &Response{
			Status:     httpResp.StatusCode,
			StatusText: http.StatusText(httpResp.StatusCode),
			Body:       body,
		}
		if retryableStatus(httpResp.StatusCode) {
			return errRetryableStatus
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		observability.FetchRetriesTotal.Inc()
		slog.Debug("retrying backend request", "url", url, "error", err, "wait", wait)
	}

	err := backoff.RetryNotify(operation, c.backoff(ctx), notify)
	if errors.Is(err, errRetryableStatus) && last != nil {
		return last, nil
	}
	if err != nil {
		return nil, err
	}
	return last, nil
}

func (c *Client) backoff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.cfg.InitialInterval
	exp.MaxInterval = c.cfg.MaxInterval
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.cfg.MaxRetries)), ctx)
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// cacheable reports whether body is JSON without a top-level error.
func cacheable(body []byte) bool {
	var probe struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	return len(probe.Error) == 0 || string(probe.Error) == "null"
}
