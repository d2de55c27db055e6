// Package events defines the concrete events carried on the buses.
//
// Every event is a value type; publishers hand over copies, so handlers can
// never observe a later mutation.
package events

import (
	"encoding/json"
	"time"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/game"
)

// Event type names.
const (
	TypeRawMessage        = "raw_message"
	TypeCommandReceived   = "command_received"
	TypeOurTurn           = "our_turn"
	TypeGlobalPing        = "global_ping"
	TypeConnectionChanged = "connection_changed"
	TypeTableInitialized  = "table_initialized"
	TypeActionSent        = "action_sent"
)

// RawMessage is one inbound text frame, exactly as received.
type RawMessage struct {
	Text string
}

// EventType implements eventbus.Event.
func (RawMessage) EventType() string { return TypeRawMessage }

// CommandReceived is a decoded inbound frame.
type CommandReceived struct {
	Name    string
	Payload map[string]any
	// Raw is the JSON object the payload was decoded from.
	Raw json.RawMessage
}

// EventType implements eventbus.Event.
func (CommandReceived) EventType() string { return TypeCommandReceived }

// Bind decodes the raw payload into v.
func (c CommandReceived) Bind(v any) error {
	return json.Unmarshal(c.Raw, v)
}

// OurTurn signals that the bot's seat is the current player at State.TableID.
type OurTurn struct {
	State game.TableState
}

// EventType implements eventbus.Event.
func (OurTurn) EventType() string { return TypeOurTurn }

// GlobalPing travels on the process-wide bus so that any bot can answer Recipient.
type GlobalPing struct {
	Recipient string
}

// EventType implements eventbus.Event.
func (GlobalPing) EventType() string { return TypeGlobalPing }

// ConnectionChanged reports a connection manager transition.
type ConnectionChanged struct {
	Connected bool
	// Err is the reason for a disconnect, if any.
	Err error
	// RetryIn is the wait before the next attempt (disconnects only).
	RetryIn time.Duration
}

// EventType implements eventbus.Event.
func (ConnectionChanged) EventType() string { return TypeConnectionChanged }

// TableInitialized is published after an init command created a table.
type TableInitialized struct {
	State game.TableState
}

// EventType implements eventbus.Event.
func (TableInitialized) EventType() string { return TypeTableInitialized }

// ActionSent is published after an action command left the bot.
type ActionSent struct {
	TableID      int
	Action       game.Action
	DecisionTime time.Duration
}

// EventType implements eventbus.Event.
func (ActionSent) EventType() string { return TypeActionSent }
