package eventbus

import "errors"

var (
	// ErrHandlerPanic wraps a panic recovered from an event handler.
	ErrHandlerPanic = errors.New("eventbus: handler panicked")

	// ErrEventMismatch is returned when a typed handler receives an event of another type.
	ErrEventMismatch = errors.New("eventbus: event type mismatch")
)
