package tracker

import "errors"

// Domain-specific errors for tracker operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrMalformedCommand is returned when a known command lacks a required field.
	ErrMalformedCommand = errors.New("tracker: malformed command")

	// ErrMissingHandler is returned when the registry does not cover a known command.
	ErrMissingHandler = errors.New("tracker: missing command handler")
)
