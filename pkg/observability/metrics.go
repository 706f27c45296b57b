// Package observability provides Prometheus metrics for provider
// invocations, the fetch layer and the response cache.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 300s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300}

var (
	// ProviderRequestsTotal counts provider invocations by outcome.
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evalkit_provider_requests_total",
			Help: "Provider invocations",
		},
		[]string{"provider", "model", "outcome"},
	)

	// ProviderLatency records end-to-end invocation latency in seconds.
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evalkit_provider_latency_seconds",
			Help:    "Provider invocation latency",
			Buckets: LLMBuckets,
		},
		[]string{"provider", "model"},
	)

	// ProviderTokensTotal counts tokens by direction (prompt, completion, cached).
	ProviderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evalkit_provider_tokens_total",
			Help: "Token count",
		},
		[]string{"provider", "model", "direction"},
	)

	// ProviderCostTotal accumulates estimated USD cost.
	ProviderCostTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evalkit_provider_cost_total",
			Help: "Estimated cost in USD",
		},
		[]string{"provider", "model"},
	)

	// CacheLookupsTotal counts fetch cache lookups by result (hit, miss, error).
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evalkit_cache_lookups_total",
			Help: "Fetch cache lookups",
		},
		[]string{"result"},
	)

	// FetchRequestsTotal counts outbound HTTP requests by method and status class.
	FetchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evalkit_fetch_requests_total",
			Help: "Outbound backend HTTP requests",
		},
		[]string{"method", "status"},
	)

	// FetchDuration records outbound HTTP request duration in seconds.
	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evalkit_fetch_duration_seconds",
			Help:    "Outbound backend HTTP request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method"},
	)

	// FetchRetriesTotal counts retried backend requests.
	FetchRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "evalkit_fetch_retries_total",
			Help: "Retried backend requests",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ProviderRequestsTotal,
		ProviderLatency,
		ProviderTokensTotal,
		ProviderCostTotal,
		CacheLookupsTotal,
		FetchRequestsTotal,
		FetchDuration,
		FetchRetriesTotal,
	)
}

// Handler returns the HTTP handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
