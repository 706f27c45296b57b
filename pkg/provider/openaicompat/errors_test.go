package openaicompat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestFormatRemoteError(t *testing.T) {
	body := []byte(`{"error":{"message":"bad request","type":"invalid_request","code":"400"}}`)
	var resp ChatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if !HasError(resp.Error) {
		t.Fatal("expected error field")
	}

	got := FormatRemoteError(resp.Error, body)

	for _, want := range []string{
		"API error: bad request",
		", Type: invalid_request",
		", Code: 400",
		"\n\n{\n  \"error\": {",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("formatted error missing %q:\n%s", want, got)
		}
	}
}

func TestFormatRemoteError_Variants(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		notWant string
	}{
		{name: "message only", raw: `{"message":"oops"}`, want: "API error: oops\n\n", notWant: "Type:"},
		{name: "numeric code", raw: `{"message":"slow down","code":429}`, want: "API error: slow down, Code: 429"},
		{name: "bare string", raw: `"quota exceeded"`, want: "API error: quota exceeded\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatRemoteError(json.RawMessage(tt.raw), []byte(`{"error":`+tt.raw+`}`))
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("got %q, want prefix %q", got, tt.want)
			}
			if tt.notWant != "" && strings.Contains(got, tt.notWant) {
				t.Errorf("got %q, should not contain %q", got, tt.notWant)
			}
		})
	}
}

func TestHasError(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{raw: "", want: false},
		{raw: "null", want: false},
		{raw: ` null `, want: false},
		{raw: `"x"`, want: true},
		{raw: `{"message":"m"}`, want: true},
	}
	for _, tt := range tests {
		if got := HasError(json.RawMessage(tt.raw)); got != tt.want {
			t.Errorf("HasError(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestRemoteErrorCode(t *testing.T) {
	if got := RemoteErrorCode(json.RawMessage(`{"message":"m","code":"rate_limit"}`)); got != "rate_limit" {
		t.Errorf("code = %q", got)
	}
	if got := RemoteErrorCode(json.RawMessage(`"plain"`)); got != "" {
		t.Errorf("code = %q, want empty", got)
	}
}

func TestFormatParseError(t *testing.T) {
	got := FormatParseError(errors.New("no choices"), []byte(`{"choices":[]}`))
	if got != `API error: no choices: {"choices":[]}` {
		t.Errorf("got %q", got)
	}
}

func TestFormatStatusError(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusBadRequest, "invalid request to backend"},
		{http.StatusUnauthorized, "backend authentication failed"},
		{http.StatusForbidden, "backend authentication failed"},
		{http.StatusNotFound, "backend resource not found"},
		{http.StatusTooManyRequests, "backend rate limit exceeded"},
		{http.StatusBadGateway, "backend server error"},
		{http.StatusTeapot, "unexpected backend error"},
	}
	for _, tt := range tests {
		got := FormatStatusError(tt.status, []byte("upstream said no"))
		if !strings.Contains(got, tt.want) || !strings.HasSuffix(got, ": upstream said no") {
			t.Errorf("FormatStatusError(%d) = %q", tt.status, got)
		}
	}

	if got := FormatStatusError(http.StatusBadGateway, nil); strings.HasSuffix(got, ": ") {
		t.Errorf("empty body should not add a suffix: %q", got)
	}
}

func TestPrettyJSON(t *testing.T) {
	if got := PrettyJSON([]byte(`{"a":1}`)); got != "{\n  \"a\": 1\n}" {
		t.Errorf("got %q", got)
	}
	if got := PrettyJSON([]byte("not json")); got != "not json" {
		t.Errorf("got %q", got)
	}
}
