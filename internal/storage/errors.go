package storage

import "errors"

// Storage errors shared by every backend. Stores are append-only.
var (
	// ErrDuplicateKey is returned when a record's key already exists
	// in the store or appears twice in one batch.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput is returned when a record fails validation before insert.
	ErrInvalidInput = errors.New("invalid input")
)
