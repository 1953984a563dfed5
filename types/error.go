package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure into the small set of outcomes callers can
// branch on. Every error that crosses a package boundary in this service
// carries exactly one kind.
type ErrorKind string

const (
	// ErrValidation marks payloads that exceed hard limits or required input
	// that is missing. Never retried.
	ErrValidation ErrorKind = "VALIDATION"

	// ErrTransientProvider marks timeouts, network failures, and 5xx answers
	// from a provider. Retried up to the stage's attempt budget.
	ErrTransientProvider ErrorKind = "TRANSIENT_PROVIDER"

	// ErrPermanentProvider marks 4xx answers and well-formed responses that
	// lack the expected success shape. Never retried.
	ErrPermanentProvider ErrorKind = "PERMANENT_PROVIDER"

	// ErrConfiguration marks a missing or blank credential, detected before
	// any network call is attempted. Fatal for the whole operation.
	ErrConfiguration ErrorKind = "CONFIGURATION"

	// ErrUnsupportedCapability marks a recognized but unimplemented response
	// shape, e.g. inline image data that would need blob storage.
	ErrUnsupportedCapability ErrorKind = "UNSUPPORTED_CAPABILITY"
)

// Error is the structured error used across recordai. It keeps the taxonomy
// intact end to end so callers branch on Kind rather than matching message
// strings.
type Error struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given kind and message.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithCause attaches the underlying cause.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus records the upstream HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider records which provider produced the error.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// AsError extracts an *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsRetryable reports whether err carries a retryable classification.
// Errors outside the taxonomy are never retried.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// KindOf extracts the kind from an error chain, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ""
}
