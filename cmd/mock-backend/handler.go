package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	modelError     = "mock-error"
	modelRateLimit = "mock-ratelimit"
	modelEmpty     = "mock-empty"
)

func newMux(token string, rpm int) *http.ServeMux {
	h := &handler{auth: newTokenChecker(token), limiter: newLimiter(rpm)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /serving-endpoints/chat/completions", h.chatCompletions)
	mux.HandleFunc("POST /chat/completions", h.chatCompletions)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

type handler struct {
	auth    tokenChecker
	limiter *limiter
}

// --- Request types ---

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Tools          []toolDef      `json:"tools,omitempty"`
	Functions      []functionDef  `json:"functions,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
	Logprobs       bool           `json:"logprobs,omitempty"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type toolDef struct {
	Type     string      `json:"type"`
	Function functionDef `json:"function"`
}

type functionDef struct {
	Name string `json:"name"`
}

// --- Response types ---

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int       `json:"index"`
	Message      chatMsg   `json:"message"`
	FinishReason string    `json:"finish_reason"`
	Logprobs     *logprobs `json:"logprobs,omitempty"`
}

type chatMsg struct {
	Role         string     `json:"role"`
	Content      *string    `json:"content"`
	FunctionCall *funcCall  `json:"function_call,omitempty"`
	ToolCalls    []toolCall `json:"tool_calls,omitempty"`
}

type toolCall struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Function funcCall `json:"function"`
}

type funcCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type logprobs struct {
	Content []tokenLogprob `json:"content"`
}

type tokenLogprob struct {
	Token   string  `json:"token"`
	Logprob float64 `json:"logprob"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// --- Handler ---

func (h *handler) chatCompletions(w http.ResponseWriter, r *http.Request) {
	token, ok := h.auth.check(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid access token.", "UNAUTHENTICATED")
		return
	}
	if !h.limiter.allow(token) {
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded.", "REQUEST_LIMIT_EXCEEDED")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "BAD_REQUEST")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages must not be empty", "BAD_REQUEST")
		return
	}

	slog.Debug("chat completion", "model", req.Model, "messages", len(req.Messages))

	switch req.Model {
	case modelError:
		writeError(w, http.StatusBadRequest, "The endpoint rejected the request.", "INVALID_PARAMETER_VALUE")
		return
	case modelRateLimit:
		w.WriteHeader(http.StatusTooManyRequests)
		return
	}

	writeJSON(w, http.StatusOK, respond(&req))
}

// respond builds a deterministic completion for req.
func respond(req *chatRequest) chatResponse {
	model := req.Model
	if model == "" {
		model = "mock-model"
	}
	resp := chatResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: 1700000000,
		Model:   model,
	}
	if model == modelEmpty {
		return resp
	}

	prompt := countTokens(req)
	last := lastUserMessage(req)

	var (
		msg       chatMsg
		finish    = "stop"
		generated []string
	)
	switch {
	case len(req.Tools) > 0:
		args := argumentsFor(last)
		msg = chatMsg{Role: "assistant", ToolCalls: []toolCall{{
			ID:       "call_" + uuid.NewString(),
			Type:     "function",
			Function: funcCall{Name: req.Tools[0].Function.Name, Arguments: args},
		}}}
		finish = "tool_calls"
		generated = strings.Fields(args)
	case len(req.Functions) > 0:
		args := argumentsFor(last)
		msg = chatMsg{Role: "assistant", FunctionCall: &funcCall{Name: req.Functions[0].Name, Arguments: args}}
		finish = "function_call"
		generated = strings.Fields(args)
	default:
		text := "echo: " + last
		if t, _ := req.ResponseFormat["type"].(string); t == "json_object" {
			data, _ := json.Marshal(map[string]string{"echo": last})
			text = string(data)
		}
		generated = strings.Fields(text)
		if req.MaxTokens > 0 && len(generated) > req.MaxTokens {
			generated = generated[:req.MaxTokens]
			text = strings.Join(generated, " ")
			finish = "length"
		}
		msg = chatMsg{Role: "assistant", Content: &text}
	}

	choice := chatChoice{Message: msg, FinishReason: finish}
	if req.Logprobs {
		choice.Logprobs = &logprobs{}
		for i, tok := range generated {
			choice.Logprobs.Content = append(choice.Logprobs.Content, tokenLogprob{
				Token:   tok,
				Logprob: -math.Round(float64(i+1)*0.1*1000) / 1000,
			})
		}
	}
	resp.Choices = []chatChoice{choice}
	resp.Usage = &chatUsage{
		PromptTokens:     prompt,
		CompletionTokens: len(generated),
		TotalTokens:      prompt + len(generated),
	}
	return resp
}

func argumentsFor(text string) string {
	data, _ := json.Marshal(map[string]string{"input": text})
	return string(data)
}

// countTokens approximates prompt tokens as whitespace-separated words.
func countTokens(req *chatRequest) int {
	n := 0
	for _, m := range req.Messages {
		n += len(strings.Fields(contentText(m.Content)))
	}
	return n
}

func lastUserMessage(req *chatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			return contentText(req.Messages[i].Content)
		}
	}
	return ""
}

// contentText flattens string or multipart content to plain text.
func contentText(content any) string {
	switch v := content.(type) {
	case string:
		return v
	case []any:
		var parts []string
		for _, part := range v {
			m, ok := part.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := m["text"].(string); ok {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, " ")
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    "invalid_request_error",
			"code":    code,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
