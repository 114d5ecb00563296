// Package apperr provides standardized domain error types for the application.
// Domain services return these typed errors, and the HTTP layer
// automatically maps them to appropriate HTTP status codes.
package apperr

import (
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindValidation indicates invalid input data.
	KindValidation
	// KindBadRequest indicates a malformed or invalid request.
	KindBadRequest
	// KindThrottled indicates the caller hit a submission throttle.
	KindThrottled
	// KindUnavailable indicates a required external capability is missing
	// or misconfigured (e.g. the mail transport).
	KindUnavailable
	// KindInternal indicates an unexpected internal error.
	KindInternal
)

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Details interface{}
	wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.wrapped)
	}
	return e.Message
}

// Unwrap returns the wrapped error, if any.
func (e *Error) Unwrap() error {
	return e.wrapped
}

// HTTPStatus maps the error kind to an HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindThrottled:
		return http.StatusTooManyRequests
	case KindUnavailable, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new typed error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a new typed error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a typed error wrapping an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, wrapped: err}
}

// WithDetails attaches structured details (e.g. a field error list).
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// Validation creates a validation error with field-level details.
func Validation(message string, details interface{}) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// Throttled creates a throttle denial error.
func Throttled(message string) *Error {
	return &Error{Kind: KindThrottled, Message: message}
}

// Internal creates an internal error wrapping an underlying cause.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, wrapped: err}
}
