package supervisor

import "errors"

// Domain-specific errors for supervisor operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownBot is returned when a bot name is not configured.
	ErrUnknownBot = errors.New("supervisor: unknown bot")

	// ErrNotRunning is returned when a bot has no live instance.
	ErrNotRunning = errors.New("supervisor: bot not running")

	// ErrEmptyCredential is returned when login succeeds without a cookie.
	ErrEmptyCredential = errors.New("supervisor: empty credential")

	// ErrInstanceExited is returned when an instance stops on its own.
	ErrInstanceExited = errors.New("supervisor: instance exited unexpectedly")

	// ErrInstancePanic is returned when an instance panics.
	ErrInstancePanic = errors.New("supervisor: instance panicked")
)
