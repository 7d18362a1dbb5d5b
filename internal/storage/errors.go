package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrBlankKey is returned when an operation is attempted with an empty key
	ErrBlankKey = errors.New("object key must not be blank")
	// ErrEmptyObject is returned when a put is attempted with no payload
	ErrEmptyObject = errors.New("object payload must not be empty")
)

// StorageError is the uniform failure type for object-store operations.
// It always carries the attempted key for diagnostics.
type StorageError struct {
	Op  string
	Key string
	Err error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed for key %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap exposes the underlying cause
func (e *StorageError) Unwrap() error {
	return e.Err
}

func newStorageError(op, key string, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}
