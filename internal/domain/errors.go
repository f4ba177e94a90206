package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is checks.
var (
	// ErrSchema is wrapped by every SchemaError.
	ErrSchema = errors.New("schema error")

	// ErrInvalidKey is wrapped by every InvalidKeyError.
	ErrInvalidKey = errors.New("invalid aggregation key")
)

// SchemaError reports a missing column or a field of the wrong logical type.
// Row is the zero-based data row, or -1 when the error concerns the header.
type SchemaError struct {
	Row    int
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("schema error: column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("schema error: row %d column %q: %s", e.Row, e.Column, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// MissingColumnsError builds the header-level SchemaError for absent columns.
func MissingColumnsError(missing []string) *SchemaError {
	return &SchemaError{
		Row:    -1,
		Column: strings.Join(missing, ","),
		Reason: "required column missing",
	}
}

// InvalidKeyError reports an aggregation key outside the enumerated set.
type InvalidKeyError struct {
	Key string
}

func (e *InvalidKeyError) Error() string {
	legal := make([]string, len(GroupKeys))
	for i, k := range GroupKeys {
		legal[i] = k.Column()
	}
	return fmt.Sprintf("%q is not an aggregation column, expected one of %v", e.Key, legal)
}

func (e *InvalidKeyError) Unwrap() error { return ErrInvalidKey }
