package databricks

import (
	"bytes"
	"fmt"
	"maps"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rhuss/evalkit/pkg/provider"
)

// Config holds the generation parameters and connection settings of a
// Databricks provider. Nil or empty fields fall back to environment
// defaults or are omitted from the request.
type Config struct {
	Temperature      *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	MaxTokens        *int     `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
	TopP             *float64 `yaml:"top_p,omitempty" json:"top_p,omitempty"`
	PresencePenalty  *float64 `yaml:"presence_penalty,omitempty" json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64 `yaml:"frequency_penalty,omitempty" json:"frequency_penalty,omitempty"`
	Seed             *int     `yaml:"seed,omitempty" json:"seed,omitempty"`
	Stop             []string `yaml:"stop,omitempty" json:"stop,omitempty"`

	// Functions and Tools are rendered with the call's template
	// variables before sending.
	Functions    []any `yaml:"functions,omitempty" json:"functions,omitempty"`
	FunctionCall any   `yaml:"function_call,omitempty" json:"function_call,omitempty"`
	Tools        []any `yaml:"tools,omitempty" json:"tools,omitempty"`
	ToolChoice   any   `yaml:"tool_choice,omitempty" json:"tool_choice,omitempty"`

	ResponseFormat any `yaml:"response_format,omitempty" json:"response_format,omitempty"`

	// Passthrough is merged into the request body last and may override
	// any computed field.
	Passthrough map[string]any `yaml:"passthrough,omitempty" json:"passthrough,omitempty"`

	// Headers are added to every request after the default headers.
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`

	// Cost overrides the catalog price per token. The same rate applies
	// to prompt and completion tokens.
	Cost *float64 `yaml:"cost,omitempty" json:"cost,omitempty"`

	APIKey      string `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	APIKeyEnvar string `yaml:"api_key_envar,omitempty" json:"api_key_envar,omitempty"`
	APIHost     string `yaml:"api_host,omitempty" json:"api_host,omitempty"`
	APIBaseURL  string `yaml:"api_base_url,omitempty" json:"api_base_url,omitempty"`

	// Timeout bounds one request including retries (default: DefaultRequestTimeout).
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// FunctionToolCallbacks maps function names to handlers whose result
	// replaces the invocation output.
	FunctionToolCallbacks map[string]provider.FunctionCallback `yaml:"-" json:"-"`
}

// Merge returns a copy of c with the fields present in overrides applied.
// Keys use the YAML field names; unknown keys are rejected. c is not
// modified.
func (c Config) Merge(overrides map[string]any) (Config, error) {
	if len(overrides) == 0 {
		return c, nil
	}

	data, err := yaml.Marshal(overrides)
	if err != nil {
		return c, fmt.Errorf("encoding config overrides: %w", err)
	}

	var o Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil {
		return c, fmt.Errorf("decoding config overrides: %w", err)
	}

	return c.overlay(o), nil
}

// overlay applies every set field of o on top of c.
func (c Config) overlay(o Config) Config {
	if o.Temperature != nil {
		c.Temperature = o.Temperature
	}
	if o.MaxTokens != nil {
		c.MaxTokens = o.MaxTokens
	}
	if o.TopP != nil {
		c.TopP = o.TopP
	}
	if o.PresencePenalty != nil {
		c.PresencePenalty = o.PresencePenalty
	}
	if o.FrequencyPenalty != nil {
		c.FrequencyPenalty = o.FrequencyPenalty
	}
	if o.Seed != nil {
		c.Seed = o.Seed
	}
	if o.Stop != nil {
		c.Stop = o.Stop
	}
	if o.Functions != nil {
		c.Functions = o.Functions
	}
	if o.FunctionCall != nil {
		c.FunctionCall = o.FunctionCall
	}
	if o.Tools != nil {
		c.Tools = o.Tools
	}
	if o.ToolChoice != nil {
		c.ToolChoice = o.ToolChoice
	}
	if o.ResponseFormat != nil {
		c.ResponseFormat = o.ResponseFormat
	}
	if o.Passthrough != nil {
		merged := maps.Clone(c.Passthrough)
		if merged == nil {
			merged = make(map[string]any, len(o.Passthrough))
		}
		maps.Copy(merged, o.Passthrough)
		c.Passthrough = merged
	}
	if o.Headers != nil {
		merged := maps.Clone(c.Headers)
		if merged == nil {
			merged = make(map[string]string, len(o.Headers))
		}
		maps.Copy(merged, o.Headers)
		c.Headers = merged
	}
	if o.Cost != nil {
		c.Cost = o.Cost
	}
	if o.APIKey != "" {
		c.APIKey = o.APIKey
	}
	if o.APIKeyEnvar != "" {
		c.APIKeyEnvar = o.APIKeyEnvar
	}
	if o.APIHost != "" {
		c.APIHost = o.APIHost
	}
	if o.APIBaseURL != "" {
		c.APIBaseURL = o.APIBaseURL
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
	}
	return c
}
