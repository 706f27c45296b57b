package openaicompat

import (
	"github.com/rhuss/evalkit/pkg/api"
	"github.com/rhuss/evalkit/pkg/provider"
)

// SelectOutput picks the invocation output from a completion message:
//
//  1. non-empty content together with a function or tool call yields the
//     whole message;
//  2. null or absent content yields the function call, else the tool calls;
//  3. otherwise the content itself.
func SelectOutput(msg ChatMessage) any {
	// A tool_calls array counts once present, even when empty.
	hasCall := msg.FunctionCall != nil || msg.ToolCalls != nil

	if hasContent(msg.Content) && hasCall {
		return msg
	}

	if msg.Content == nil {
		if msg.FunctionCall != nil {
			return *msg.FunctionCall
		}
		if msg.ToolCalls != nil {
			return msg.ToolCalls
		}
		return ""
	}

	return msg.Content
}

// FunctionCalls lists the calls a message requests, in server order. A
// legacy function_call takes the place of tool calls.
func FunctionCalls(msg ChatMessage) []provider.FunctionCall {
	if msg.FunctionCall != nil {
		return []provider.FunctionCall{{Name: msg.FunctionCall.Name, Arguments: msg.FunctionCall.Arguments}}
	}

	calls := make([]provider.FunctionCall, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		calls = append(calls, provider.FunctionCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments})
	}
	return calls
}

// ExtractLogProbs flattens per-token log probabilities, discarding token
// text. It returns nil when the choice carries none.
func ExtractLogProbs(choice ChatChoice) []float64 {
	if choice.Logprobs == nil || len(choice.Logprobs.Content) == 0 {
		return nil
	}
	out := make([]float64, len(choice.Logprobs.Content))
	for i, lp := range choice.Logprobs.Content {
		out[i] = lp.Logprob
	}
	return out
}

// NormalizeUsage converts backend usage into TokenUsage. A cached response
// reports only the cached and total counts.
func NormalizeUsage(u *ChatUsage, cached bool) *api.TokenUsage {
	if u == nil {
		return nil
	}
	if cached {
		return &api.TokenUsage{
			Cached: api.Int(u.TotalTokens),
			Total:  api.Int(u.TotalTokens),
		}
	}
	return &api.TokenUsage{
		Total:      api.Int(u.TotalTokens),
		Prompt:     api.Int(u.PromptTokens),
		Completion: api.Int(u.CompletionTokens),
	}
}

// ExtractContentString returns the message content when it is a plain string.
func ExtractContentString(content any) string {
	if s, ok := content.(string); ok {
		return s
	}
	return ""
}

func hasContent(content any) bool {
	switch v := content.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	default:
		return true
	}
}
