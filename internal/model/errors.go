package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLevelFormat indicates a target level token that does not match
	// the level grammar.
	ErrInvalidLevelFormat = errors.New("invalid level format")

	// ErrInvalidIdentifier indicates a guide identifier that tries to leave the
	// guide namespace. Callers must not echo the identifier back.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrInvalidConfiguration indicates non-positive or inconsistent caps.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidInput indicates an empty or oversized caller-supplied field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstream indicates a failure in an external collaborator
	// (embedding provider, vector store, reranker, LLM).
	ErrUpstream = errors.New("upstream error")

	// ErrNotFound indicates a missing chunk or guide.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates an authenticated caller whose role does not
	// permit the operation.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError names the field and the constraint it violated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// UpstreamError wraps a collaborator failure. StatusCode is zero for
// transport errors and malformed responses.
type UpstreamError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

// Unwrap exposes both the cause and ErrUpstream to errors.Is.
func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstream, e.Err}
}

// Upstream builds an *UpstreamError from a formatted cause.
func Upstream(service string, status int, format string, args ...any) error {
	return &UpstreamError{Service: service, StatusCode: status, Err: fmt.Errorf(format, args...)}
}
