package databricks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rhuss/evalkit/pkg/api"
	"github.com/rhuss/evalkit/pkg/cache/memory"
	"github.com/rhuss/evalkit/pkg/catalog"
	"github.com/rhuss/evalkit/pkg/debug"
	"github.com/rhuss/evalkit/pkg/fetch"
	"github.com/rhuss/evalkit/pkg/observability"
	"github.com/rhuss/evalkit/pkg/prompt"
	"github.com/rhuss/evalkit/pkg/provider"
	"github.com/rhuss/evalkit/pkg/provider/openaicompat"
)

// ProviderName labels metrics and logs.
const ProviderName = "databricks"

// defaultFetcher is shared by providers constructed without a Fetcher.
var defaultFetcher = sync.OnceValue(func() fetch.Fetcher {
	return fetch.New(fetch.Config{CacheBackend: "memory"}, memory.New(0))
})

// ChatProvider performs chat completions against a Databricks serving
// endpoint. It is immutable after construction and safe for concurrent use.
type ChatProvider struct {
	*Base
	fetcher fetch.Fetcher
	catalog *catalog.Catalog
}

var _ provider.Provider = (*ChatProvider)(nil)

// NewChatProvider creates a ChatProvider for model.
func NewChatProvider(model string, opts Options) *ChatProvider {
	f := opts.Fetcher
	if f == nil {
		f = defaultFetcher()
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	return &ChatProvider{
		Base:    NewBase(model, opts),
		fetcher: f,
		catalog: cat,
	}
}

// Invoke sends prompt to the chat completions endpoint. Text beginning
// with a JSON array or a YAML "- role:" list is sent as a multi-message
// transcript; anything else becomes a single user message.
//
// A missing API key or invalid prompt-level config is returned as an
// *api.APIError before any request is made. Every other failure is
// reported through the result's Error field.
func (p *ChatProvider) Invoke(ctx context.Context, text string, call *provider.CallContext, opts *provider.InvokeOptions) (*api.InvocationResult, error) {
	start := time.Now()

	cfg, err := p.cfg.Merge(callConfig(call))
	if err != nil {
		observability.RecordConfigurationFailure(ProviderName, p.model)
		return nil, api.NewConfigurationError("config", err.Error())
	}

	key, ok := p.apiKey(cfg)
	if !ok {
		observability.RecordConfigurationFailure(ProviderName, p.model)
		return nil, api.NewConfigurationError("api_key",
			"Databricks API key is not set. Set the "+EnvToken+" environment variable or add api_key to the provider config.")
	}

	res := p.invoke(ctx, cfg, key, text, call, opts)
	observability.RecordInvocation(ProviderName, p.model, start, res)
	return res, nil
}

func (p *ChatProvider) invoke(ctx context.Context, cfg Config, key, text string, call *provider.CallContext, opts *provider.InvokeOptions) *api.InvocationResult {
	msgs, err := prompt.ParseChatPrompt(text, prompt.UserMessage(text))
	if err != nil {
		return api.ErrorResult(fmt.Errorf("invalid chat prompt: %w", err))
	}

	body := p.buildBody(cfg, msgs, provider.VarsOf(call), opts)
	data, err := json.Marshal(body)
	if err != nil {
		return api.ErrorResult(fmt.Errorf("encoding request body: %w", err))
	}

	headers := map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + key,
	}
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}

	url := p.baseURL(cfg) + "/chat/completions"
	debug.Log("providers", "calling Databricks", "url", url, "model", p.model)
	debug.Body("providers", "request body", data)

	resp, err := p.fetcher.Fetch(ctx, url, &fetch.Request{
		Method:  http.MethodPost,
		Headers: headers,
		Body:    data,
	}, timeout)
	if err != nil {
		return api.ErrorResult(api.NewTransportError("API call error: " + err.Error()))
	}

	debug.Log("providers", "Databricks response", "status", resp.Status, "cached", resp.Cached)
	debug.Body("providers", "response body", resp.Body)

	return p.parseResponse(cfg, resp)
}

// parseResponse normalizes a fetched response into a result.
func (p *ChatProvider) parseResponse(cfg Config, resp *fetch.Response) *api.InvocationResult {
	var cr openaicompat.ChatCompletionResponse
	if err := json.Unmarshal(resp.Body, &cr); err != nil {
		if !resp.OK() {
			return api.ErrorResult(api.NewRemoteError("", openaicompat.FormatStatusError(resp.Status, resp.Body)))
		}
		return api.ErrorResult(api.NewResponseError(openaicompat.FormatParseError(err, resp.Body)))
	}

	if openaicompat.HasError(cr.Error) {
		return api.ErrorResult(api.NewRemoteError(
			openaicompat.RemoteErrorCode(cr.Error),
			openaicompat.FormatRemoteError(cr.Error, resp.Body),
		))
	}
	if !resp.OK() {
		return api.ErrorResult(api.NewRemoteError("", openaicompat.FormatStatusError(resp.Status, resp.Body)))
	}
	if len(cr.Choices) == 0 {
		return api.ErrorResult(api.NewResponseError(
			openaicompat.FormatParseError(errors.New("response contains no choices"), resp.Body),
		))
	}

	choice := cr.Choices[0]
	res := &api.InvocationResult{
		Output:     openaicompat.SelectOutput(choice.Message),
		TokenUsage: openaicompat.NormalizeUsage(cr.Usage, resp.Cached),
		Cached:     resp.Cached,
		LogProbs:   openaicompat.ExtractLogProbs(choice),
	}
	if cr.Usage != nil {
		res.Cost = p.catalog.Cost(p.model, cfg.Cost, cr.Usage.PromptTokens, cr.Usage.CompletionTokens)
	}

	out, handled, err := provider.DispatchCallback(openaicompat.FunctionCalls(choice.Message), cfg.FunctionToolCallbacks)
	if err != nil {
		slog.Warn("function callback failed", "provider", ProviderName, "model", p.model, "error", err)
		return api.ErrorResult(api.NewResponseError(openaicompat.FormatParseError(err, resp.Body)))
	}
	if handled {
		res.Output = out
	}

	return res
}

func callConfig(call *provider.CallContext) map[string]any {
	if call == nil {
		return nil
	}
	return call.Config
}
