package connection

import "errors"

// Domain-specific errors for connection operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when sending while no connection is established.
	ErrNotConnected = errors.New("connection: not connected")

	// ErrDialFailed is returned when the websocket handshake fails.
	ErrDialFailed = errors.New("connection: dial failed")

	// ErrSendFailed is returned when writing a frame fails.
	ErrSendFailed = errors.New("connection: send failed")
)
