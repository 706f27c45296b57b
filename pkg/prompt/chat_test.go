package prompt

import (
	"errors"
	"testing"

	"github.com/rhuss/evalkit/pkg/provider"
)

func TestParseChatPrompt(t *testing.T) {
	defaults := UserMessage("hello")

	tests := []struct {
		name      string
		text      string
		wantRoles []string
		wantErr   bool
	}{
		{name: "plain text", text: "hello", wantRoles: []string{"user"}},
		{name: "empty", text: "", wantRoles: []string{"user"}},
		{
			name:      "json array",
			text:      `[{"role":"system","content":"be brief"},{"role":"user","content":"hi"}]`,
			wantRoles: []string{"system", "user"},
		},
		{
			name:      "json array with surrounding whitespace",
			text:      "  \n[{\"role\":\"user\",\"content\":\"hi\"}]\n",
			wantRoles: []string{"user"},
		},
		{
			name:      "yaml list",
			text:      "- role: system\n  content: be brief\n- role: user\n  content: hi\n",
			wantRoles: []string{"system", "user"},
		},
		{name: "invalid json array", text: `[{"role":"user",`, wantErr: true},
		{name: "json object", text: `{"role":"user"}`, wantErr: true},
		{name: "missing role", text: `[{"content":"hi"}]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := ParseChatPrompt(tt.text, defaults)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", msgs)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(msgs) != len(tt.wantRoles) {
				t.Fatalf("got %d messages, want %d", len(msgs), len(tt.wantRoles))
			}
			for i, role := range tt.wantRoles {
				if msgs[i].Role != role {
					t.Errorf("msgs[%d].Role = %q, want %q", i, msgs[i].Role, role)
				}
			}
		})
	}
}

func TestParseChatPrompt_DefaultsContent(t *testing.T) {
	msgs, err := ParseChatPrompt("What is 2+2?", UserMessage("What is 2+2?"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgs[0].Role != provider.RoleUser || msgs[0].Content != "What is 2+2?" {
		t.Errorf("unexpected default message: %+v", msgs[0])
	}
}

func TestParseChatPrompt_ObjectError(t *testing.T) {
	_, err := ParseChatPrompt(`{"a":1}`, nil)
	if !errors.Is(err, ErrObjectPrompt) {
		t.Errorf("expected ErrObjectPrompt, got %v", err)
	}
}
