// Package errors provides structured error types for equipneeds.
//
// Errors carry a machine-readable [Code] so the CLI and the HTTP API can
// map failures consistently:
//   - INVALID_*: bad input, configuration, or an unusable payload from the
//     game API (fail-fast; surfaced to the caller)
//   - *_NOT_FOUND: a lookup that found nothing
//   - NETWORK_ERROR / FETCH_FAILED: transport failures
//   - INTERNAL_ERROR: everything else
//
// Graph irregularities in the recipe data are deliberately not errors: the
// resolver logs them and carries on with a partial result.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidVoyage, "voyage %d returned no data", id)
//	if errors.Is(err, errors.ErrCodeInvalidVoyage) {
//	    // fail fast
//	}
//
//	err := errors.Wrap(errors.ErrCodeNetwork, cause, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidSymbol   Code = "INVALID_SYMBOL"
	ErrCodeInvalidDigest   Code = "INVALID_DIGEST"
	ErrCodeInvalidSnapshot Code = "INVALID_SNAPSHOT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"

	// Unusable payloads from the game API. These are never degraded
	// gracefully.
	ErrCodeInvalidVoyage  Code = "INVALID_VOYAGE"
	ErrCodeInvalidSession Code = "INVALID_SESSION"

	// Resource not found errors
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeCrewNotFound      Code = "CREW_NOT_FOUND"
	ErrCodeArchetypeNotFound Code = "ARCHETYPE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeFetchFailed Code = "FETCH_FAILED"
	ErrCodeTimeout     Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsFailFast reports whether err signals an unusable payload that callers
// must not paper over.
func IsFailFast(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidVoyage, ErrCodeInvalidSession:
		return true
	}
	return false
}

// HTTPStatus maps an error code to the status the API server responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidSymbol, ErrCodeInvalidDigest, ErrCodeInvalidFormat:
		return 400
	case ErrCodeNotFound, ErrCodeCrewNotFound, ErrCodeArchetypeNotFound:
		return 404
	case ErrCodeInvalidVoyage, ErrCodeInvalidSession, ErrCodeNetwork, ErrCodeFetchFailed:
		return 502
	case ErrCodeTimeout:
		return 504
	default:
		return 500
	}
}
