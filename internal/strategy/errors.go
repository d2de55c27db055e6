package strategy

import "errors"

// Domain-specific errors for strategy operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownStrategy is returned when no strategy is registered under a name.
	ErrUnknownStrategy = errors.New("strategy: unknown strategy")

	// ErrDuplicateStrategy is returned when a name is registered twice.
	ErrDuplicateStrategy = errors.New("strategy: already registered")

	// ErrNoPlayers is returned when a decision is asked for a table without players.
	ErrNoPlayers = errors.New("strategy: table has no players")
)
