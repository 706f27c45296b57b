package openaicompat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// HasError reports whether the raw error field carries a value.
func HasError(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// FormatRemoteError renders an error returned in a response body as
//
//	API error: <message>[, Type: <type>][, Code: <code>]
//
// followed by a blank line and the pretty-printed body. A bare string
// error is used as the message.
func FormatRemoteError(raw json.RawMessage, body []byte) string {
	var b strings.Builder
	b.WriteString("API error: ")

	var obj ChatErrorBody
	var str string
	switch {
	case json.Unmarshal(raw, &obj) == nil:
		b.WriteString(obj.Message)
		if obj.Type != "" {
			fmt.Fprintf(&b, ", Type: %s", obj.Type)
		}
		if code := codeString(obj.Code); code != "" {
			fmt.Fprintf(&b, ", Code: %s", code)
		}
	case json.Unmarshal(raw, &str) == nil:
		b.WriteString(str)
	default:
		b.Write(raw)
	}

	b.WriteString("\n\n")
	b.WriteString(PrettyJSON(body))
	return b.String()
}

// RemoteErrorCode returns the code of an error object, if any.
func RemoteErrorCode(raw json.RawMessage) string {
	var obj ChatErrorBody
	if json.Unmarshal(raw, &obj) != nil {
		return ""
	}
	return codeString(obj.Code)
}

// FormatParseError renders a response that could not be interpreted,
// embedding the raw body for diagnosis.
func FormatParseError(err error, body []byte) string {
	return fmt.Sprintf("API error: %s: %s", err, body)
}

// FormatStatusError renders a non-2xx response that carried no error object.
func FormatStatusError(status int, body []byte) string {
	msg := fmt.Sprintf("API error: %s (HTTP %d)", DescribeStatus(status), status)
	if len(bytes.TrimSpace(body)) > 0 {
		msg += ": " + string(body)
	}
	return msg
}

// DescribeStatus returns a short description of an HTTP failure status.
func DescribeStatus(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return "invalid request to backend"
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "backend authentication failed"
	case status == http.StatusNotFound:
		return "backend resource not found"
	case status == http.StatusTooManyRequests:
		return "backend rate limit exceeded"
	case status >= http.StatusInternalServerError:
		return "backend server error"
	default:
		return "unexpected backend error"
	}
}

// PrettyJSON indents body when it is valid JSON and returns it unchanged
// otherwise.
func PrettyJSON(body []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return string(body)
	}
	return out.String()
}

func codeString(code any) string {
	switch v := code.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}
