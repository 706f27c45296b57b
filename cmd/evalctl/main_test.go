package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rhuss/evalkit/pkg/api"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evalkit.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func newBackend(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/serving-endpoints/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-1",
			"model": req.Model,
			"choices": []any{map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "echo: " + req.Messages[0].Content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 1000, "completion_tokens": 1000, "total_tokens": 2000},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInvoke(t *testing.T) {
	var calls atomic.Int32
	srv := newBackend(t, &calls)
	cfgPath := writeConfig(t, `
env:
  DATABRICKS_TOKEN: test-token
  DATABRICKS_BASE_URL: `+srv.URL+`/serving-endpoints
cache:
  type: memory
`)

	out, err := run(t, "", "invoke", "--config", cfgPath, "-p", "databricks:databricks-dbrx-instruct", "hello")
	if err != nil {
		t.Fatalf("invoke: %v\n%s", err, out)
	}

	var res api.InvocationResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	if res.Output != "echo: hello" {
		t.Errorf("output = %v", res.Output)
	}
	if res.TokenUsage == nil || res.TokenUsage.Total == nil || *res.TokenUsage.Total != 2000 {
		t.Errorf("tokenUsage = %+v", res.TokenUsage)
	}
	if res.Cost == nil || *res.Cost <= 0 {
		t.Errorf("cost = %v, want positive", res.Cost)
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", calls.Load())
	}
}

func TestInvokeStdinAndVars(t *testing.T) {
	var calls atomic.Int32
	srv := newBackend(t, &calls)
	cfgPath := writeConfig(t, `
env:
  DATABRICKS_TOKEN: test-token
  DATABRICKS_BASE_URL: `+srv.URL+`/serving-endpoints
`)

	out, err := run(t, `[{"role":"user","content":"from stdin"}]`,
		"invoke", "-c", cfgPath, "--var", "city=Paris", "-")
	if err != nil {
		t.Fatalf("invoke: %v\n%s", err, out)
	}
	if !strings.Contains(out, "echo: from stdin") {
		t.Errorf("output = %s", out)
	}
}

func TestInvokeErrorResult(t *testing.T) {
	var calls atomic.Int32
	srv := newBackend(t, &calls)
	cfgPath := writeConfig(t, `
env:
  DATABRICKS_TOKEN: wrong-token
  DATABRICKS_BASE_URL: `+srv.URL+`/serving-endpoints
`)

	out, err := run(t, "", "invoke", "-c", cfgPath, "hi")
	if err == nil {
		t.Fatal("expected error for failed invocation")
	}
	if !strings.Contains(out, `"error"`) || !strings.Contains(out, "HTTP 401") {
		t.Errorf("output = %s", out)
	}
}

func TestInvokeArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no prompt", []string{"invoke"}, "a prompt is required"},
		{"bad var", []string{"invoke", "--var", "novalue", "hi"}, "expected key=value"},
		{"prompt and file", []string{"invoke", "-f", "x.txt", "hi"}, "not both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestModels(t *testing.T) {
	catPath := filepath.Join(t.TempDir(), "catalog.yaml")
	os.WriteFile(catPath, []byte(`
models:
  - id: my-endpoint
    cost:
      input: 0.000002
      output: 0.000004
`), 0o600)
	cfgPath := writeConfig(t, "catalog_file: "+catPath+"\n")

	out, err := run(t, "", "models", "-c", cfgPath)
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	for _, want := range []string{"MODEL", "databricks-dbrx-instruct", "my-endpoint", "2.00", "4.00", "databricks-bge-large-en"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	good := writeConfig(t, `
providers:
  - id: databricks:chat:my-endpoint
    config:
      temperature: 0.2
`)
	out, err := run(t, "", "config", "validate", "-c", good)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "1 provider(s), cache memory") {
		t.Errorf("output = %q", out)
	}

	bad := writeConfig(t, `
cache:
  type: memcached
`)
	if _, err := run(t, "", "config", "validate", "-c", bad); err == nil {
		t.Error("expected validation error")
	}
}

func TestConfigShowRedacts(t *testing.T) {
	cfgPath := writeConfig(t, `
providers:
  - id: databricks:databricks-dbrx-instruct
    config:
      api_key: super-secret
`)
	out, err := run(t, "", "config", "show", "-c", cfgPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if strings.Contains(out, "super-secret") {
		t.Errorf("api key not redacted:\n%s", out)
	}
	if !strings.Contains(out, "databricks:databricks-dbrx-instruct") {
		t.Errorf("provider missing:\n%s", out)
	}
}
