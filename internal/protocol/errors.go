package protocol

import "errors"

var (
	// ErrMissingSeparator is returned when a frame has no space after the command name.
	ErrMissingSeparator = errors.New("protocol: missing command separator")

	// ErrInvalidPayload is returned when the text after the command is not a JSON object.
	ErrInvalidPayload = errors.New("protocol: payload is not a JSON object")

	// ErrEmptyCommand is returned when encoding without a command name.
	ErrEmptyCommand = errors.New("protocol: empty command name")
)
