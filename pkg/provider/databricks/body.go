package databricks

import (
	"github.com/rhuss/evalkit/pkg/prompt"
	"github.com/rhuss/evalkit/pkg/provider"
	"github.com/rhuss/evalkit/pkg/provider/openaicompat"
)

// buildBody assembles the chat completions request. Numeric parameters
// fall back to environment defaults, then literals. Passthrough fields
// are applied last.
func (p *ChatProvider) buildBody(cfg Config, msgs []provider.Message, vars map[string]any, opts *provider.InvokeOptions) map[string]any {
	body := map[string]any{
		"model":             p.model,
		"messages":          openaicompat.TranslateMessages(msgs),
		"max_tokens":        intOr(cfg.MaxTokens, p.envInt(EnvMaxTokens, defaultMaxTokens)),
		"temperature":       floatOr(cfg.Temperature, p.envFloat(EnvTemperature, defaultTemperature)),
		"top_p":             floatOr(cfg.TopP, p.envFloat(EnvTopP, defaultTopP)),
		"presence_penalty":  floatOr(cfg.PresencePenalty, p.envFloat(EnvPresencePenalty, defaultPresencePenalty)),
		"frequency_penalty": floatOr(cfg.FrequencyPenalty, p.envFloat(EnvFrequencyPenalty, defaultFrequencyPenalty)),
	}

	if cfg.Seed != nil {
		body["seed"] = *cfg.Seed
	}
	if len(cfg.Functions) > 0 {
		body["functions"] = prompt.RenderObject(cfg.Functions, vars)
	}
	if cfg.FunctionCall != nil {
		body["function_call"] = cfg.FunctionCall
	}
	if len(cfg.Tools) > 0 {
		body["tools"] = prompt.RenderObject(cfg.Tools, vars)
	}
	if cfg.ToolChoice != nil {
		body["tool_choice"] = cfg.ToolChoice
	}
	if cfg.ResponseFormat != nil {
		body["response_format"] = prompt.RenderObject(cfg.ResponseFormat, vars)
	}
	if opts != nil && opts.IncludeLogProbs {
		body["logprobs"] = true
	}
	if len(cfg.Stop) > 0 {
		body["stop"] = cfg.Stop
	}

	for k, v := range cfg.Passthrough {
		body[k] = v
	}
	return body
}

func intOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

func floatOr(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}
