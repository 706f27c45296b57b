package openaicompat

import "encoding/json"

// Chat Completions wire types. These mirror the OpenAI Chat Completions
// API format; request bodies are assembled as JSON objects by each adapter
// so passthrough fields can override any key.

// ChatMessage represents a message in the Chat Completions format.
type ChatMessage struct {
	Role         string            `json:"role"`
	Content      any               `json:"content"`
	Name         string            `json:"name,omitempty"`
	FunctionCall *ChatFunctionCall `json:"function_call,omitempty"`
	ToolCalls    []ChatToolCall    `json:"tool_calls,omitempty"`
	ToolCallID   string            `json:"tool_call_id,omitempty"`
}

// ChatToolCall represents a tool call in an assistant message.
type ChatToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ChatFunctionCall `json:"function"`
}

// ChatFunctionCall holds function name and arguments.
type ChatFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatCompletionResponse is the response from /chat/completions. Error is
// kept raw because backends send either an object or a bare string.
type ChatCompletionResponse struct {
	ID      string          `json:"id"`
	Object  string          `json:"object"`
	Model   string          `json:"model"`
	Choices []ChatChoice    `json:"choices"`
	Usage   *ChatUsage      `json:"usage,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// ChatChoice represents one completion choice.
type ChatChoice struct {
	Index        int           `json:"index"`
	Message      ChatMessage   `json:"message"`
	FinishReason string        `json:"finish_reason"`
	Logprobs     *ChatLogprobs `json:"logprobs,omitempty"`
}

// ChatLogprobs holds per-token log probabilities for a choice.
type ChatLogprobs struct {
	Content []ChatTokenLogprob `json:"content"`
}

// ChatTokenLogprob is the log probability of one output token.
type ChatTokenLogprob struct {
	Token   string  `json:"token"`
	Logprob float64 `json:"logprob"`
}

// ChatUsage holds token usage from the Chat Completions API.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatErrorBody is the error object returned by Chat Completions backends.
type ChatErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}
