package store

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("invalid email record")

	// ErrInvalidRange matches every *InvalidRangeError.
	ErrInvalidRange = errors.New("invalid month range")

	// ErrNotFound is returned by point lookups for unknown IDs.
	ErrNotFound = errors.New("email not found")

	// ErrStorageUnavailable wraps failures to open or reach the database file.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError reports a record or argument that cannot be stored.
type ValidationError struct {
	ID     string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s for email %q: %s", e.Field, e.ID, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InvalidRangeError reports a month name outside the canonical list.
type InvalidRangeError struct {
	Month string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf(
		"invalid month name %q: use full English names like %q",
		e.Month, "October",
	)
}

func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}
