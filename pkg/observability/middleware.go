package observability

import (
	"net/http"
	"strconv"
	"time"
)

// InstrumentTransport wraps an http.RoundTripper to record outbound request
// metrics.
//
// It captures:
//   - evalkit_fetch_requests_total (counter): per request with method and status class ("2xx", "error")
//   - evalkit_fetch_duration_seconds (histogram): request duration by method
func InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()

		resp, err := next.RoundTrip(r)

		FetchDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())

		status := "error"
		if err == nil {
			status = strconv.Itoa(resp.StatusCode/100) + "xx"
		}
		FetchRequestsTotal.WithLabelValues(r.Method, status).Inc()

		return resp, err
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
