// Package apperrors provides structured error handling with HTTP status code mapping.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error for response formatting and metrics.
type Kind string

const (
	// KindValidation indicates invalid input (HTTP 400)
	KindValidation Kind = "validation"
	// KindUnauthorized indicates a missing or invalid caller identity (HTTP 401)
	KindUnauthorized Kind = "unauthorized"
	// KindForbidden indicates the caller may not act on this resource (HTTP 403)
	KindForbidden Kind = "forbidden"
	// KindNotFound indicates resource not found (HTTP 404)
	KindNotFound Kind = "not_found"
	// KindConflict indicates a concurrent-write conflict (HTTP 409)
	KindConflict Kind = "conflict"
	// KindUnavailable indicates the persistence collaborator is unreachable (HTTP 503)
	KindUnavailable Kind = "unavailable"
	// KindInternal indicates a server-side error (HTTP 500)
	KindInternal Kind = "internal"
)

// Error is a structured error carrying a kind, a message, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Validation creates a new validation error (HTTP 400).
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Unauthorized creates a new unauthorized error (HTTP 401).
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden creates a new forbidden error (HTTP 403).
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound creates a new not-found error (HTTP 404).
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict creates a new conflict error (HTTP 409).
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unavailable wraps a store connectivity failure (HTTP 503).
func Unavailable(message string, cause error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Cause: cause}
}

// Internal wraps an unexpected server-side failure (HTTP 500).
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatusOf returns the HTTP status for err, defaulting to 500.
func HTTPStatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}
