package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Template errors
	ErrTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrFetchFailed      ErrorCode = "FETCH_FAILED"
	ErrManifestParse    ErrorCode = "MANIFEST_PARSE"
	ErrManifestConflict ErrorCode = "MANIFEST_CONFLICT"

	// Render errors
	ErrRenderSyntax ErrorCode = "RENDER_SYNTAX"

	// Build errors
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrPathEscape    ErrorCode = "PATH_ESCAPE"
	ErrBuildIO       ErrorCode = "BUILD_IO"

	// Version control errors
	ErrVCSInit ErrorCode = "VCS_INIT"
)

// PiError represents a structured error with code and details
type PiError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PiError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PiError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PiError) Is(target error) bool {
	var targetErr *PiError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PiError with the given code and message
func New(code ErrorCode, message string) *PiError {
	return &PiError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PiError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PiError {
	return &PiError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PiError
func Wrap(err error, code ErrorCode, message string) *PiError {
	if err == nil {
		return nil
	}
	return &PiError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PiError {
	if err == nil {
		return nil
	}
	return &PiError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PiError) WithDetail(key string, value interface{}) *PiError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var piErr *PiError
	if errors.As(err, &piErr) {
		return piErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PiError
func GetErrorCode(err error) ErrorCode {
	var piErr *PiError
	if errors.As(err, &piErr) {
		return piErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PiError
func GetErrorDetails(err error) map[string]interface{} {
	var piErr *PiError
	if errors.As(err, &piErr) {
		return piErr.Details
	}
	return nil
}
