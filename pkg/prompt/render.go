package prompt

import (
	"strings"
	"text/template"
)

// RenderObject returns a deep copy of obj with every string rendered as a
// text/template against vars (e.g., "{{.city}}"). Maps and slices are
// walked recursively; other values are returned as-is.
//
// A string that fails to parse or references a missing variable is kept
// verbatim, so definitions with literal braces survive rendering.
func RenderObject(obj any, vars map[string]any) any {
	switch v := obj.(type) {
	case string:
		return renderString(v, vars)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			out[k] = RenderObject(elem, vars)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = RenderObject(elem, vars)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = RenderObject(elem, vars)
		}
		return out
	default:
		return obj
	}
}

func renderString(s string, vars map[string]any) string {
	if !strings.Contains(s, "{{") {
		return s
	}

	tmpl, err := template.New("").Option("missingkey=error").Parse(s)
	if err != nil {
		return s
	}

	if vars == nil {
		vars = map[string]any{}
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, vars); err != nil {
		return s
	}
	return b.String()
}
