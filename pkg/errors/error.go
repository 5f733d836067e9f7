package errors

import (
	"encoding/json"
	"fmt"
	"time"
)

// ErrorType defines distinct categories for errors originating from sinklog components.
type ErrorType string

const (
	// ConfigurationError represents caller mistakes such as an unknown level name.
	// These are the only errors returned to the caller of a logging operation.
	ConfigurationError ErrorType = "configuration_error"
	// ResourceError represents sink failures: a log file that cannot be opened or written.
	// They are downgraded to warnings on the remaining sinks.
	ResourceError ErrorType = "resource_error"
	// InternalError represents broken internal invariants, e.g. an unknown level value.
	// They are handed to the fatal reporter.
	InternalError ErrorType = "internal_error"
)

// StructuredError represents a detailed error originating from sinklog operations.
// It includes a type, message, optional details, timestamp, and a specific error code.
// It implements the standard Go `error` interface.
type StructuredError struct {
	// Type categorizes the error (e.g., ConfigurationError, ResourceError).
	Type ErrorType `json:"type"`
	// Message provides a concise, human-readable description of the error.
	Message string `json:"message"`
	// Details offers additional context or the underlying error message, if available.
	Details string `json:"details,omitempty"`
	// Timestamp marks when the error occurred in RFC3339 format.
	Timestamp string `json:"timestamp"`
	// Code provides a specific integer code unique to the error source within its type.
	Code int `json:"code"`
}

// Error implements the standard `error` interface for StructuredError.
// It returns a formatted string including the error type, message, and details.
func (e *StructuredError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Message, e.Details)
}

// Is reports whether target is a StructuredError with the same type and code.
// Message, details and timestamp are ignored, so package level sentinels
// can be matched with errors.Is.
func (e *StructuredError) Is(target error) bool {
	t, ok := target.(*StructuredError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// JSON returns the StructuredError serialized as a JSON string.
// Returns an empty string and an error if marshalling fails.
func (e *StructuredError) JSON() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// New creates a new StructuredError instance.
// It automatically sets the Timestamp to the current time.
func New(errorType ErrorType, message, details string, code int) *StructuredError {
	return &StructuredError{
		Type:      errorType,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().Format(time.RFC3339),
		Code:      code,
	}
}

// Wrap creates a new StructuredError, using the message from an existing standard Go error
// as the Details field.
// If the input error `err` is nil, Details will be empty.
func Wrap(err error, errorType ErrorType, message string, code int) *StructuredError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return New(errorType, message, details, code)
}
