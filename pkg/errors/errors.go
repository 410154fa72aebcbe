// Package errors defines structured error types and error handling utilities
// for the risk engine. Errors carry a stable code for classification, a
// human-readable message, and an optional wrapped cause.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an error for handling and reporting.
type ErrorCode string

const (
	// CodeValidation marks a request rejected before any work was done.
	CodeValidation ErrorCode = "validation_error"

	// CodeNotFound marks a missing entity or cache entry.
	CodeNotFound ErrorCode = "not_found"

	// CodeEventStore marks an analytics-store failure.
	CodeEventStore ErrorCode = "event_store_error"

	// CodeRiskStore marks a key-value store failure.
	CodeRiskStore ErrorCode = "risk_store_error"

	// CodePublish marks a downstream publish failure.
	CodePublish ErrorCode = "publish_error"

	// CodeInternal marks everything else.
	CodeInternal ErrorCode = "internal_error"
)

// AppError is a structured application error.
type AppError struct {
	code    ErrorCode
	message string
	cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Code returns the error classification code.
func (e *AppError) Code() ErrorCode {
	return e.code
}

// Unwrap returns the wrapped cause, if any.
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches two AppErrors by code, so sentinel comparisons like
// errors.Is(err, ErrValidation) hold for derived instances.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return e.code == appErr.code
	}
	return false
}

// WithCause returns a copy of the error with the given cause attached.
func (e *AppError) WithCause(cause error) *AppError {
	return &AppError{code: e.code, message: e.message, cause: cause}
}

// WithMessagef returns a copy of the error with a formatted message.
func (e *AppError) WithMessagef(format string, args ...interface{}) *AppError {
	return &AppError{code: e.code, message: fmt.Sprintf(format, args...), cause: e.cause}
}

// New creates a new AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{code: code, message: message}
}

// Newf creates a new AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{code: code, message: fmt.Sprintf(format, args...)}
}

// Predefined sentinel errors.
var (
	ErrValidation = New(CodeValidation, "invalid request")
	ErrNotFound   = New(CodeNotFound, "not found")
	ErrEventStore = New(CodeEventStore, "event store unavailable")
	ErrRiskStore  = New(CodeRiskStore, "risk store operation failed")
	ErrPublish    = New(CodePublish, "downstream publish failed")
	ErrInternal   = New(CodeInternal, "internal error")
)

// CodeOf extracts the ErrorCode from any error, defaulting to CodeInternal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return CodeInternal
}
