package contrib

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamAuth means the credential is missing or was rejected.
	ErrUpstreamAuth = errors.New("upstream authentication failed")
	// ErrUpstreamNotFound means the username resolved to no user.
	ErrUpstreamNotFound = errors.New("upstream user not found")
	// ErrUpstreamUnavailable covers network errors, timeouts, non-2xx
	// answers and malformed payloads.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrValidation means a required input was missing or malformed.
	ErrValidation = errors.New("validation failed")
)

// UpstreamError is returned by every adapter. Kind is one of the sentinel
// errors above; Err is the underlying cause, if any.
type UpstreamError struct {
	Source string
	Kind   error
	Err    error
}

// NewUpstreamError builds an UpstreamError of the given kind.
func NewUpstreamError(source string, kind, err error) *UpstreamError {
	return &UpstreamError{Source: source, Kind: kind, Err: err}
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Source, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Source, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
