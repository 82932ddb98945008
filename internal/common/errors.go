// Package common defines shared constants, sentinel errors and typed errors
// used across the verification server and its CLI. Callers should use
// errors.Is / errors.As to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidInput is wrapped by every InputError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSecurityViolation is wrapped by every SecurityViolationError.
	ErrSecurityViolation = errors.New("security violation")
)

// InputError reports a malformed claim payload field. It is user-correctable
// and is raised before any evaluation takes place.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// NewInputError builds an InputError for field.
func NewInputError(field, format string, args ...any) *InputError {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// SecurityViolationError aborts the whole operation. ViolationType names the
// triggering check (for example "gaming-detected" or "missing-session").
type SecurityViolationError struct {
	ViolationType string
	Severity      string
	Message       string
}

func (e *SecurityViolationError) Error() string {
	return fmt.Sprintf("security violation %s (%s): %s", e.ViolationType, e.Severity, e.Message)
}

func (e *SecurityViolationError) Unwrap() error { return ErrSecurityViolation }
