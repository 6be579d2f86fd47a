package entities

import "errors"

var (
	// ErrPermissionDenied is returned when a non-admin invokes an
	// admin-only entry point.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a referenced category, channel or
	// admin does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned on a unique-constraint violation
	// (category name, channel id, file reference).
	ErrDuplicate = errors.New("already exists")

	// ErrValidation is returned for malformed input; the current
	// conversation state is retried, never advanced.
	ErrValidation = errors.New("validation failed")
)
