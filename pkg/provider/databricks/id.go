package databricks

import (
	"fmt"
	"strings"
)

// Provider kinds addressable by id.
const (
	KindChat       = "chat"
	KindCompletion = "completion"
)

// ParseID splits a provider id of the form "databricks:<model>",
// "databricks:chat:<model>" or "databricks:completion:<model>" into its
// kind and model. A bare "databricks:<model>" is a chat provider.
func ParseID(id string) (kind, model string, err error) {
	rest, ok := strings.CutPrefix(id, ProviderName+":")
	if !ok {
		return "", "", fmt.Errorf("provider id %q: expected prefix %q", id, ProviderName+":")
	}

	kind = KindChat
	for _, k := range []string{KindChat, KindCompletion} {
		if m, found := strings.CutPrefix(rest, k+":"); found {
			kind, rest = k, m
			break
		}
	}

	if rest == "" {
		return "", "", fmt.Errorf("provider id %q: model name is required", id)
	}
	return kind, rest, nil
}
