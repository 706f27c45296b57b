package api

// InvocationResult is the uniform outcome of one provider call.
// Exactly one of Output and Error is meaningful: a result built with
// ErrorResult never carries output, usage or cost.
type InvocationResult struct {
	// Output is a string for plain completions, or a structured value
	// (function call, tool calls, or the whole message) otherwise.
	Output any `json:"output,omitempty"`

	// Error holds a human-readable failure description.
	Error string `json:"error,omitempty"`

	TokenUsage *TokenUsage `json:"tokenUsage,omitempty"`

	// Cached is true when the response was served from the fetch cache.
	Cached bool `json:"cached,omitempty"`

	// LogProbs holds per-token log probabilities in output order.
	LogProbs []float64 `json:"logProbs,omitempty"`

	// Cost is the estimated USD cost of the call, nil when unknown.
	Cost *float64 `json:"cost,omitempty"`
}

// TokenUsage holds normalized token counts. Nil fields were not reported.
type TokenUsage struct {
	Prompt     *int `json:"prompt,omitempty"`
	Completion *int `json:"completion,omitempty"`
	Total      *int `json:"total,omitempty"`
	Cached     *int `json:"cached,omitempty"`
}

// ErrorResult builds a failed InvocationResult from an error.
// APIError messages are used verbatim so formatted backend errors keep
// their layout.
func ErrorResult(err error) *InvocationResult {
	if apiErr, ok := err.(*APIError); ok {
		return &InvocationResult{Error: apiErr.Message}
	}
	return &InvocationResult{Error: err.Error()}
}

// IsError reports whether the result represents a failure.
func (r *InvocationResult) IsError() bool {
	return r.Error != ""
}

// OutputString returns the output when it is plain text.
func (r *InvocationResult) OutputString() (string, bool) {
	s, ok := r.Output.(string)
	return s, ok
}

// Int returns a pointer to v, for populating optional counts.
func Int(v int) *int {
	return &v
}
