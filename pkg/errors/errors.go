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
	ErrUnknown            ErrorCode = "UNKNOWN"
	ErrInternal           ErrorCode = "INTERNAL"
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrAlreadyExists      ErrorCode = "ALREADY_EXISTS"
	ErrInvariantViolation ErrorCode = "INVARIANT_VIOLATION"

	// Configuration errors
	ErrConfigLoad ErrorCode = "CONFIG_LOAD"

	// Manifest errors
	ErrParse        ErrorCode = "MANIFEST_PARSE"
	ErrDuplicateKey ErrorCode = "DUPLICATE_KEY"

	// Add/remove input errors
	ErrMissingDescription     ErrorCode = "MISSING_DESCRIPTION"
	ErrDescriptionUnavailable ErrorCode = "DESCRIPTION_UNAVAILABLE"
	ErrNotInteractive         ErrorCode = "NOT_INTERACTIVE"

	// Source registry errors
	ErrUnknownSource         ErrorCode = "UNKNOWN_SOURCE"
	ErrDuplicateRegistration ErrorCode = "DUPLICATE_REGISTRATION"

	// Process errors
	ErrMissingExecutable ErrorCode = "MISSING_EXECUTABLE"
	ErrCommandFailed     ErrorCode = "COMMAND_FAILED"
	ErrInterrupted       ErrorCode = "INTERRUPTED"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
)

// AppError represents a structured error with code and details
type AppError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *AppError) Is(target error) bool {
	var targetErr *AppError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new AppError with the given code and message
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with an AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an AppError
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an AppError
func GetErrorDetails(err error) map[string]interface{} {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}

// UserMessage returns the message of the outermost AppError without its code
// prefix, falling back to err.Error() for foreign errors.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Wrapped != nil {
			return fmt.Sprintf("%s: %v", appErr.Message, UserMessage(appErr.Wrapped))
		}
		return appErr.Message
	}
	return err.Error()
}
