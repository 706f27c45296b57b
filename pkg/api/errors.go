package api

import "fmt"

// ErrorType represents the category of a provider error.
type ErrorType string

const (
	ErrorTypeConfiguration  ErrorType = "configuration_error"
	ErrorTypeTransport      ErrorType = "transport_error"
	ErrorTypeRemote         ErrorType = "remote_error"
	ErrorTypeResponse       ErrorType = "response_error"
	ErrorTypeNotImplemented ErrorType = "not_implemented"
)

// APIError represents a categorized provider error with type, code, param, and message.
type APIError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code,omitempty"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Retryable reports whether a fresh invocation may succeed where this one failed.
// Only transport failures qualify; configuration, remote and response errors
// are terminal for the request that produced them.
func (e *APIError) Retryable() bool {
	return e.Type == ErrorTypeTransport
}

// NewConfigurationError creates an APIError for a missing or invalid provider setting.
func NewConfigurationError(param, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeConfiguration,
		Param:   param,
		Message: message,
	}
}

// NewTransportError creates an APIError for network or fetch failures.
func NewTransportError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeTransport,
		Message: message,
	}
}

// NewRemoteError creates an APIError for an error object returned by the backend.
func NewRemoteError(code, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeRemote,
		Code:    code,
		Message: message,
	}
}

// NewResponseError creates an APIError for a backend response that could not be interpreted.
func NewResponseError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeResponse,
		Message: message,
	}
}

// NewNotImplementedError creates an APIError for operations a provider does not support.
func NewNotImplementedError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeNotImplemented,
		Message: message,
	}
}
