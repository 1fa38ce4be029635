package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound returned when an operation refers to an unknown draft
	ErrNotFound = errors.New("not found")
	// ErrNotQueued returned when a draft exists but has already left the queued state
	ErrNotQueued = errors.New("draft is not queued")
	// ErrBusy returned when another mutating cycle is already in flight
	ErrBusy = errors.New("another cycle is in progress")
)

// ValidationError rejects malformed input before it reaches storage or the network
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
