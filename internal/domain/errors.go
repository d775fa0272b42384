package domain

import "errors"

// Common errors
var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when an insert is rejected by a
	// uniqueness constraint. The pipeline treats it as "already done",
	// never as a failure.
	ErrAlreadyExists = errors.New("resource already exists")
)
