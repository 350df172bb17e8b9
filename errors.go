package blobdiff

import "errors"

// Error kinds returned by the comparator. Errors are wrapped with context,
// so match them with errors.Is.
var (
	// ErrInvalidInput is returned for empty names or values, and for reports
	// requested without a reference or without a candidate.
	ErrInvalidInput = errors.New("invalid input")

	// ErrShape is returned when a column length differs from the reference.
	ErrShape = errors.New("shape mismatch")
)
