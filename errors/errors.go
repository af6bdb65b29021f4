package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// ExitCode is the process exit status the CLI reports for this error.
	ExitCode int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with the exit code derived from code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		ExitCode: ExitCodeFor(code),
	}
}

// --- Common Error Constructors ---

// InvalidConfig reports an invalid configuration value or CLI usage.
func InvalidConfig(reason string) *AppError {
	return New(ErrCodeInvalidConfig, reason)
}

// DirectoryNotFound reports a missing recordings or transcripts directory.
func DirectoryNotFound(role, path string) *AppError {
	return New(ErrCodeDirectoryNotFound, fmt.Sprintf("%s directory does not exist: %s", role, path)).
		WithDetails(map[string]any{"role": role, "path": path})
}

// InputNotFound reports an explicit input file that does not exist.
func InputNotFound(path string) *AppError {
	return New(ErrCodeInputNotFound, fmt.Sprintf("audio file not found: %s", path)).
		WithDetail("path", path)
}

// NoAudioFiles reports a directory without any accepted audio file.
func NoAudioFiles(dir string) *AppError {
	return New(ErrCodeNoAudioFiles, fmt.Sprintf("no audio files found in %s", dir)).
		WithDetail("path", dir)
}

// ToolNotFound reports an external program that could not be started.
func ToolNotFound(tool string, cause error) *AppError {
	return New(ErrCodeToolNotFound, fmt.Sprintf("%s not found; install it or set its path in the configuration", tool)).
		WithDetail("tool", tool).
		WithCause(cause)
}

// ToolFailed reports an external program that exited unsuccessfully.
func ToolFailed(tool string, exitCode int, cause error) *AppError {
	return New(ErrCodeToolFailed, fmt.Sprintf("%s failed with exit code %d", tool, exitCode)).
		WithDetails(map[string]any{"tool": tool, "exit_code": exitCode}).
		WithCause(cause)
}

// Canceled reports an operation stopped by the operator.
func Canceled(operation string, cause error) *AppError {
	return New(ErrCodeCanceled, fmt.Sprintf("%s canceled", operation)).
		WithDetail("operation", operation).
		WithCause(cause)
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "an unexpected error occurred").WithCause(cause)
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// ExitCodeOf returns the process exit code for any error. Nil maps to ExitOK,
// errors that are not AppErrors map to ExitFailure.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitOK
	}
	if appErr, ok := AsAppError(err); ok {
		if appErr.ExitCode != 0 {
			return appErr.ExitCode
		}
		return ExitCodeFor(appErr.Code)
	}
	return ExitFailure
}
