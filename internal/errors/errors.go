// Package errors provides structured error types for Adapter Studio.
package errors

import (
	"encoding/json"
	"fmt"
)

// Error codes for Adapter Studio operations.
const (
	// Config errors
	CodeConfigNotConfigured = "CONFIG_001" // Toolkit path not set
	CodeConfigReadError     = "CONFIG_002" // Config file unreadable
	CodeConfigWriteError    = "CONFIG_003" // Config file write failed

	// Toolkit errors
	CodeToolkitInvalid     = "TOOLKIT_001" // Structure validation failed
	CodeToolkitNotFound    = "TOOLKIT_002" // Path does not exist
	CodeToolkitVenvMissing = "TOOLKIT_003" // Virtual environment not set up

	// Input errors
	CodeInputMissing    = "INPUT_001" // Required flag not supplied
	CodeInputNotFound   = "INPUT_002" // Referenced path does not exist
	CodeInputUnreadable = "INPUT_003" // Referenced path not readable
	CodeInputOutOfRange = "INPUT_004" // Numeric flag outside valid range

	// Run errors
	CodeRunFailed      = "RUN_001" // Child exited non-zero
	CodeRunTimeout     = "RUN_002" // Child exceeded its timeout
	CodeRunInterrupted = "RUN_003" // Cancelled by the user
	CodeRunStartError  = "RUN_004" // Child could not be started
)

// StudioError is the structured error type for Adapter Studio operations.
type StudioError struct {
	Code    string         `json:"code"`              // Error code (e.g., "TOOLKIT_001")
	Message string         `json:"message"`           // Human-readable message
	Details map[string]any `json:"details,omitempty"` // Context (path, flag, etc.)
	Cause   error          `json:"-"`                 // Wrapped error (not serialized)
}

// Error implements the error interface.
func (e *StudioError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *StudioError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error.
func (e *StudioError) WithDetail(key string, value any) *StudioError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error.
func (e *StudioError) WithCause(err error) *StudioError {
	e.Cause = err
	return e
}

// MarshalJSON implements json.Marshaler with cause error message.
func (e *StudioError) MarshalJSON() ([]byte, error) {
	type alias StudioError
	aux := &struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// New creates a new StudioError.
func New(code, message string) *StudioError {
	return &StudioError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new StudioError with formatted message.
func Newf(code, format string, args ...any) *StudioError {
	return &StudioError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with a StudioError.
func Wrap(code, message string, err error) *StudioError {
	return &StudioError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted StudioError.
func Wrapf(code string, err error, format string, args ...any) *StudioError {
	return &StudioError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// --- Config Errors ---

// NotConfigured creates an error for a missing toolkit configuration.
func NotConfigured() *StudioError {
	return New(CodeConfigNotConfigured, "toolkit not configured. Run 'adapter-studio init' first")
}

// --- Toolkit Errors ---

// ToolkitInvalid creates an error for a failed structure validation.
func ToolkitInvalid(path string, problems []string) *StudioError {
	return Newf(CodeToolkitInvalid, "toolkit validation failed for %s", path).
		WithDetail("path", path).
		WithDetail("problems", problems)
}

// VenvMissing creates an error for a missing virtual environment.
func VenvMissing() *StudioError {
	return New(CodeToolkitVenvMissing, "virtual environment not set up. Run 'adapter-studio setup' first")
}

// --- Input Errors ---

// InputMissing creates an error for a required flag that was not supplied.
func InputMissing(flag string) *StudioError {
	return Newf(CodeInputMissing, "--%s is required", flag).
		WithDetail("flag", flag)
}

// InputNotFound creates an error for a referenced path that does not exist.
func InputNotFound(what, path string) *StudioError {
	return Newf(CodeInputNotFound, "%s not found at %s", what, path).
		WithDetail("path", path)
}

// InputOutOfRange creates an error for a numeric flag outside its range.
func InputOutOfRange(flag, valid string) *StudioError {
	return Newf(CodeInputOutOfRange, "--%s must be %s", flag, valid).
		WithDetail("flag", flag)
}

// ExitError carries a child process exit code to main so it can be relayed
// as the studio's own exit status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError creates an ExitError for the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}
