package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestStructuredErrorImplementsErrorInterface(t *testing.T) {
	err := New(ConfigurationError, "Test error", "Test details", 123)

	var _ error = err

	expected := "[configuration_error] Test error: Test details"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}

	bare := New(InternalError, "No details", "", 1)
	if bare.Error() != "[internal_error] No details" {
		t.Errorf("Error() = %q, want %q", bare.Error(), "[internal_error] No details")
	}
}

func TestStructuredErrorJSON(t *testing.T) {
	err := New(ResourceError, "JSON test", "Some details", 42)

	jsonStr, jsonErr := err.JSON()
	if jsonErr != nil {
		t.Fatalf("Failed to marshal error to JSON: %v", jsonErr)
	}

	var parsed map[string]interface{}
	if unmarshalErr := json.Unmarshal([]byte(jsonStr), &parsed); unmarshalErr != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", unmarshalErr)
	}

	if parsed["type"] != string(ResourceError) {
		t.Errorf("type = %q, want %q", parsed["type"], ResourceError)
	}
	if parsed["message"] != "JSON test" {
		t.Errorf("message = %q, want %q", parsed["message"], "JSON test")
	}
	if parsed["code"].(float64) != 42 {
		t.Errorf("code = %v, want %v", parsed["code"], 42)
	}
}

func TestIsMatchesTypeAndCode(t *testing.T) {
	sentinel := New(ConfigurationError, "invalid level", "", ErrInvalidLevelName)
	err := fmt.Errorf("parse: %w", New(ConfigurationError, "other text", "got bogus", ErrInvalidLevelName))

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should match on type and code")
	}

	other := New(ResourceError, "invalid level", "", ErrInvalidLevelName)
	if errors.Is(err, other) {
		t.Error("errors.Is should not match a different type")
	}
	if errors.Is(err, errors.New("invalid level")) {
		t.Error("errors.Is should not match a plain error")
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("permission denied")
	wrapped := Wrap(originalErr, ResourceError, "Can't open log file", ErrFileSinkOpen)

	if wrapped.Details != originalErr.Error() {
		t.Errorf("Details = %q, want %q", wrapped.Details, originalErr.Error())
	}
	if wrapped.Type != ResourceError {
		t.Errorf("Type = %q, want %q", wrapped.Type, ResourceError)
	}

	nilWrapped := Wrap(nil, InternalError, "Nil wrap", 1)
	if nilWrapped.Details != "" {
		t.Errorf("Details = %q, want empty string", nilWrapped.Details)
	}
}

func TestGetErrorMessage(t *testing.T) {
	if GetErrorMessage(ErrFileSinkOpen) == "Unknown error." {
		t.Error("known code should have a message")
	}
	if GetErrorMessage(4242) != "Unknown error." {
		t.Errorf("GetErrorMessage(4242) = %q", GetErrorMessage(4242))
	}
}
