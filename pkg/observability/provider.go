package observability

import (
	"time"

	"github.com/rhuss/evalkit/pkg/api"
)

// Invocation outcomes used as the "outcome" label.
const (
	OutcomeOK            = "ok"
	OutcomeError         = "error"
	OutcomeConfiguration = "configuration_error"
)

// RecordInvocation records latency, outcome, token usage and cost for one
// provider call.
func RecordInvocation(provider, model string, start time.Time, res *api.InvocationResult) {
	ProviderLatency.WithLabelValues(provider, model).Observe(time.Since(start).Seconds())

	if res == nil || res.IsError() {
		ProviderRequestsTotal.WithLabelValues(provider, model, OutcomeError).Inc()
		return
	}
	ProviderRequestsTotal.WithLabelValues(provider, model, OutcomeOK).Inc()

	if u := res.TokenUsage; u != nil {
		addTokens(provider, model, "prompt", u.Prompt)
		addTokens(provider, model, "completion", u.Completion)
		addTokens(provider, model, "cached", u.Cached)
	}
	if res.Cost != nil {
		ProviderCostTotal.WithLabelValues(provider, model).Add(*res.Cost)
	}
}

// RecordConfigurationFailure counts an invocation rejected before any network call.
func RecordConfigurationFailure(provider, model string) {
	ProviderRequestsTotal.WithLabelValues(provider, model, OutcomeConfiguration).Inc()
}

func addTokens(provider, model, direction string, n *int) {
	if n == nil || *n <= 0 {
		return
	}
	ProviderTokensTotal.WithLabelValues(provider, model, direction).Add(float64(*n))
}
