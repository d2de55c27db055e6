package observe

import (
	"fmt"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/game"
)

// Logger is the logging interface used by the observers.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Connection state names shared by every observer.
const (
	StateConnected    = "connected"
	StateReconnecting = "reconnecting"
	StateStopped      = "stopped"
)

// actionType returns the "type" field of an action, or "unknown".
func actionType(a game.Action) string {
	if t, ok := a["type"]; ok && t != nil {
		return fmt.Sprint(t)
	}
	return "unknown"
}

func connectionState(connected bool) string {
	if connected {
		return StateConnected
	}
	return StateReconnecting
}
