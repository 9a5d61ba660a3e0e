package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration signals an unusable catalog store or alias map.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation signals an intent that violates the input contract.
	ErrValidation = errors.New("validation failed")
	// ErrStoreTimeout signals a catalog read that exceeded its deadline.
	ErrStoreTimeout = errors.New("store timeout")
)

// FieldError wraps ErrValidation with the offending intent field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// NewFieldError creates a validation error for a single field.
func NewFieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
