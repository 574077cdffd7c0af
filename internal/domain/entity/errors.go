package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists indicates that an entity with the same identity is
	// already present.
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput indicates that the provided input is invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError represents a client-input error with the offending field.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is makes ValidationError match ErrInvalidInput in errors.Is chains, so
// callers can classify input errors without inspecting the concrete type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
