package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a record does not exist, or when a
	// conditional update finds the record changed underneath it.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a record with the same key already exists.
	ErrConflict = errors.New("record already exists")
)
