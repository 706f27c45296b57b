package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rhuss/evalkit/pkg/cache/memory"
)

func testConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		CacheBackend:    "memory",
	}
}

func postRequest(body string) *Request {
	return &Request{
		Method:  http.MethodPost,
		Headers: map[string]string{"Content-Type": "application/json", "Authorization": "Bearer tok"},
		Body:    []byte(body),
	}
}

func TestKey(t *testing.T) {
	a := &Request{Method: "POST", Headers: map[string]string{"A": "1", "B": "2"}, Body: []byte("x")}
	b := &Request{Method: "POST", Headers: map[string]string{"B": "2", "A": "1"}, Body: []byte("x")}
	if Key("http://h/p", a) != Key("http://h/p", b) {
		t.Error("key should not depend on header map order")
	}

	c := &Request{Method: "POST", Headers: a.Headers, Body: []byte("y")}
	if Key("http://h/p", a) == Key("http://h/p", c) {
		t.Error("key should depend on body")
	}
	if Key("http://h/p", a) == Key("http://h/q", a) {
		t.Error("key should depend on URL")
	}
	if len(Key("u", a)) != 64 {
		t.Errorf("expected hex sha256, got %q", Key("u", a))
	}
}

func TestFetch_CachesSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := New(testConfig(), memory.New(0))
	ctx := context.Background()

	first, err := c.Fetch(ctx, srv.URL, postRequest(`{"a":1}`), time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Cached {
		t.Error("first response should not be cached")
	}

	second, err := c.Fetch(ctx, srv.URL, postRequest(`{"a":1}`), time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Cached {
		t.Error("second response should be served from cache")
	}
	if string(second.Body) != `{"choices":[]}` {
		t.Errorf("cached body = %s", second.Body)
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", calls.Load())
	}
}

func TestFetch_DoesNotCacheErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "error object in 200", status: http.StatusOK, body: `{"error":{"message":"bad"}}`},
		{name: "client error status", status: http.StatusBadRequest, body: `{"choices":[]}`},
		{name: "non-json body", status: http.StatusOK, body: `plain text`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(testConfig(), memory.New(0))
			for i := 0; i < 2; i++ {
				resp, err := c.Fetch(context.Background(), srv.URL, postRequest("{}"), time.Second)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if resp.Status != tt.status || resp.Cached {
					t.Errorf("resp = status %d cached %v", resp.Status, resp.Cached)
				}
			}
			if calls.Load() != 2 {
				t.Errorf("backend calls = %d, want 2", calls.Load())
			}
		})
	}
}

func TestFetch_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid token"}}`))
	}))
	defer srv.Close()

	c := New(testConfig(), nil)
	resp, err := c.Fetch(context.Background(), srv.URL, postRequest("{}"), time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusUnauthorized || resp.OK() {
		t.Errorf("status = %d", resp.Status)
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", calls.Load())
	}
}

func TestFetch_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		switch n {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.Write([]byte(`{"choices":[]}`))
		}
	}))
	defer srv.Close()

	c := New(testConfig(), nil)
	resp, err := c.Fetch(context.Background(), srv.URL, postRequest("{}"), time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.Status)
	}
	if calls.Load() != 3 {
		t.Errorf("backend calls = %d, want 3", calls.Load())
	}
}

func TestFetch_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"down"}}`))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRetries = 2
	c := New(cfg, nil)

	resp, err := c.Fetch(context.Background(), srv.URL, postRequest("{}"), time.Second)
	if err != nil {
		t.Fatalf("exhausted retries should return the last response, got error: %v", err)
	}
	if resp.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.Status)
	}
	if calls.Load() != 3 {
		t.Errorf("backend calls = %d, want 3", calls.Load())
	}
}

func TestFetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	cfg := testConfig()
	cfg.MaxRetries = -1
	c := New(cfg, nil)

	if _, err := c.Fetch(context.Background(), url, postRequest("{}"), time.Second); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(testConfig(), nil)
	start := time.Now()
	if _, err := c.Fetch(context.Background(), srv.URL, postRequest("{}"), 50*time.Millisecond); err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}
}

func TestFetch_SharesInFlightRequests(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := New(testConfig(), memory.New(0))

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Fetch(context.Background(), srv.URL, postRequest(`{"same":true}`), 5*time.Second)
			errs <- err
		}()
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", calls.Load())
	}
}

func TestFetch_CallerCancelDoesNotFailSharedRequest(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := New(testConfig(), memory.New(0))
	req := postRequest(`{"shared":true}`)

	ctx1, cancel1 := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctx1, srv.URL, req, 5*time.Second)
		first <- err
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("backend never received the request")
	}

	second := make(chan error, 1)
	go func() {
		resp, err := c.Fetch(context.Background(), srv.URL, req, 5*time.Second)
		if err == nil && string(resp.Body) != `{"choices":[]}` {
			t.Errorf("body = %s", resp.Body)
		}
		second <- err
	}()
	// Let the second caller join the in-flight call before cancelling.
	time.Sleep(50 * time.Millisecond)

	cancel1()
	select {
	case err := <-first:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("cancelled caller err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(release)
	select {
	case err := <-second:
		if err != nil {
			t.Errorf("other caller failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("other caller did not return")
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", calls.Load())
	}
}

func TestFetcherFunc(t *testing.T) {
	var f Fetcher = FetcherFunc(func(ctx context.Context, url string, req *Request, timeout time.Duration) (*Response, error) {
		return &Response{Status: 204}, nil
	})
	resp, err := f.Fetch(context.Background(), "u", &Request{}, 0)
	if err != nil || resp.Status != 204 || !resp.OK() {
		t.Errorf("resp = %+v, err = %v", resp, err)
	}
}
