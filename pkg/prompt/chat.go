package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rhuss/evalkit/pkg/provider"
)

// ErrObjectPrompt is returned for prompts that look like a single JSON
// object rather than a list of messages.
var ErrObjectPrompt = errors.New("chat prompt must be a list of messages, not an object")

// ParseChatPrompt interprets text as a chat transcript.
//
//   - text starting with "- role:" is a YAML list of messages
//   - text starting with "[" is a JSON array of messages
//   - text starting with "{" is rejected
//
// Anything else is plain text and defaults is returned unchanged.
func ParseChatPrompt(text string, defaults []provider.Message) ([]provider.Message, error) {
	trimmed := strings.TrimSpace(text)

	var (
		msgs []provider.Message
		err  error
	)
	switch {
	case strings.HasPrefix(trimmed, "- role:"):
		err = yaml.Unmarshal([]byte(trimmed), &msgs)
		if err != nil {
			return nil, fmt.Errorf("parsing YAML chat prompt: %w", err)
		}
	case strings.HasPrefix(trimmed, "["):
		err = json.Unmarshal([]byte(trimmed), &msgs)
		if err != nil {
			return nil, fmt.Errorf("parsing JSON chat prompt: %w", err)
		}
	case strings.HasPrefix(trimmed, "{"):
		return nil, ErrObjectPrompt
	default:
		return defaults, nil
	}

	for i, m := range msgs {
		if m.Role == "" {
			return nil, fmt.Errorf("chat prompt message %d: role is required", i)
		}
	}
	return msgs, nil
}

// UserMessage returns the default single-message transcript for text.
func UserMessage(text string) []provider.Message {
	return []provider.Message{{Role: provider.RoleUser, Content: text}}
}
