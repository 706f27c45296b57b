package databricks

import "sync"

// DefaultGradingModel is the model used by the grading singletons.
const DefaultGradingModel = "databricks-dbrx-instruct"

// DefaultGradingProvider returns the process-wide provider used to grade
// outputs. It is constructed on first use.
var DefaultGradingProvider = sync.OnceValue(func() *ChatProvider {
	return NewChatProvider(DefaultGradingModel, Options{})
})

// DefaultGradingJSONProvider is like DefaultGradingProvider but forces a
// JSON object response.
var DefaultGradingJSONProvider = sync.OnceValue(func() *ChatProvider {
	return NewChatProvider(DefaultGradingModel, Options{
		Config: Config{
			ResponseFormat: map[string]any{"type": "json_object"},
		},
	})
})
