// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors. Caller-initiated cancellation is reported as
// context.Canceled and is not redefined here.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrStoreCorrupted = errors.New("learning store corrupted")

	// Transfer errors.
	ErrIntegrity     = errors.New("integrity check failed")
	ErrSourceMissing = errors.New("source file missing")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user. It always
// carries the failed operation and the affected path alongside the cause.
type UserError struct {
	Err       error
	Operation string
	Path      string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Operation, e.Path)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-facing error for one operation on one path.
func NewUserError(operation, path string, err error) error {
	return &UserError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
