package login

import "errors"

// Domain-specific errors for login operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrAuthFailed is returned for every unsuccessful login. The wrapped
	// error carries the transport failure or the rejecting status.
	ErrAuthFailed = errors.New("login: authentication failed")
)
