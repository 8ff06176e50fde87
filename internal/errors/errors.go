package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrNoPath       = errors.New("no destination path: neither an explicit path nor a source path is set")
	ErrOpenFailed   = errors.New("destination could not be opened for writing")
	ErrCommitFailed = errors.New("staged file could not be committed to the destination")
	ErrWriteFailed  = errors.New("destination could not be written")
	ErrEncodeFailed = errors.New("value could not be encoded as JSON")
	ErrInvalidRoot  = errors.New("document root must be a JSON object or array")
	ErrInvalidPath  = errors.New("invalid value path")
	ErrKeyNotFound  = errors.New("key not found")
	ErrReadOnlyKey  = errors.New("key is read-only")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeNoPath  ErrorType = "no_path"
	ErrorTypeOpen    ErrorType = "open"
	ErrorTypeCommit  ErrorType = "commit"
	ErrorTypeWrite   ErrorType = "write"
	ErrorTypeEncode  ErrorType = "encode"
	ErrorTypeValue   ErrorType = "value"
	ErrorTypeInput   ErrorType = "input"
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeUnknown ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	// Check if target is also an *AppError and if the types match
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// wrap joins a sentinel with the underlying cause so both match errors.Is.
func wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// NewNoPathError reports a save without any resolvable destination
func NewNoPathError() *AppError {
	return &AppError{
		Type:    ErrorTypeNoPath,
		Message: "cannot save settings",
		Err:     ErrNoPath,
	}
}

// NewOpenError reports a destination that could not be opened for writing
func NewOpenError(path string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOpen,
		Message: fmt.Sprintf("failed to open '%s'", path),
		Err:     wrap(ErrOpenFailed, err),
	}
}

// NewCommitError reports a staged write that could not replace the destination
func NewCommitError(path string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeCommit,
		Message: fmt.Sprintf("failed to commit '%s'", path),
		Err:     wrap(ErrCommitFailed, err),
	}
}

// NewWriteError reports a failed direct write
func NewWriteError(path string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeWrite,
		Message: fmt.Sprintf("failed to write '%s'", path),
		Err:     wrap(ErrWriteFailed, err),
	}
}

// NewEncodeError reports a value that cannot be serialized
func NewEncodeError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeEncode,
		Message: message,
		Err:     wrap(ErrEncodeFailed, err),
	}
}

// NewValueError creates a new error related to in-memory value access
func NewValueError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeValue,
		Message: message,
		Err:     err,
	}
}

// NewInputError creates a new error related to command input
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to tool configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the ErrorType of the first AppError in err's chain.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeNoPath:
			return "Save error: no file path was given and the document has no source path."
		case ErrorTypeOpen:
			return fmt.Sprintf("Save error: %s. Check that the directory exists and is writable.", appErr.Message)
		case ErrorTypeCommit:
			return fmt.Sprintf("Save error: %s. The previous file was left unchanged.", appErr.Message)
		case ErrorTypeWrite:
			return fmt.Sprintf("Save error: %s. The file may be incomplete.", appErr.Message)
		case ErrorTypeEncode:
			return fmt.Sprintf("Encoding error: %s", appErr.Message)
		case ErrorTypeValue:
			return fmt.Sprintf("Value error: %s", appErr.Message)
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrInvalidRoot) {
		return "Error: The document root must be a JSON object or array."
	}
	if errors.Is(err, ErrInvalidPath) {
		return "Error: The key path is not valid."
	}
	if errors.Is(err, ErrKeyNotFound) {
		return "Error: The key does not exist in the document."
	}
	if errors.Is(err, ErrReadOnlyKey) {
		return "Error: The key is marked read-only in the configuration."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
