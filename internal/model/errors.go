package model

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a validation error (including wrapped errors).
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// NotFoundError reports an operation addressed to a memo id that does not exist.
type NotFoundError struct {
	MemoID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("memo %s not found", e.MemoID)
}

// NewNotFoundError constructs NotFoundError.
func NewNotFoundError(memoID string) NotFoundError {
	return NotFoundError{MemoID: memoID}
}

// IsNotFoundError checks if error is NotFoundError.
func IsNotFoundError(err error) bool {
	var ne NotFoundError
	return errors.As(err, &ne)
}

// StorageError reports a failure reading or writing the durable container.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps an underlying cause with the failed operation name.
func NewStorageError(op string, err error) StorageError {
	return StorageError{Op: op, Err: err}
}

// IsStorageError checks if error is StorageError.
func IsStorageError(err error) bool {
	var se StorageError
	return errors.As(err, &se)
}
