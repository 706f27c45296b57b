package openaicompat

import (
	"github.com/rhuss/evalkit/pkg/provider"
)

// TranslateMessages converts chat prompt messages into the Chat
// Completions message format.
func TranslateMessages(msgs []provider.Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(msgs))
	for _, pm := range msgs {
		cm := ChatMessage{
			Role:       pm.Role,
			Content:    pm.Content,
			ToolCallID: pm.ToolCallID,
			Name:       pm.Name,
		}
		for _, tc := range pm.ToolCalls {
			typ := tc.Type
			if typ == "" {
				typ = "function"
			}
			cm.ToolCalls = append(cm.ToolCalls, ChatToolCall{
				ID:   tc.ID,
				Type: typ,
				Function: ChatFunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		out = append(out, cm)
	}
	return out
}
