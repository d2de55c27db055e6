package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/events"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/game"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/protocol"
)

const (
	// actionTurn is the gameAction sub-type that moves the current seat.
	actionTurn = "turn"

	// pingToken is the chat word that triggers a pong.
	pingToken = "ping"

	// commandPrefix marks room chat addressed to bots.
	commandPrefix = "/"
)

type initPayload struct {
	TableID        *int     `json:"tableID"`
	PlayerNames    []string `json:"playerNames"`
	OurPlayerIndex *int     `json:"ourPlayerIndex"`
}

type gameActionPayload struct {
	TableID *int `json:"tableID"`
	Action  struct {
		Type               string `json:"type"`
		CurrentPlayerIndex *int   `json:"currentPlayerIndex"`
	} `json:"action"`
}

type chatPayload struct {
	Msg       string `json:"msg"`
	Who       string `json:"who"`
	Room      string `json:"room"`
	Recipient string `json:"recipient"`
}

type welcomePayload struct {
	Username string `json:"username"`
}

// handleInit replaces the table entry and asks for the full game info.
func (t *Tracker) handleInit(ctx context.Context, cmd events.CommandReceived) error {
	var p initPayload
	if err := cmd.Bind(&p); err != nil {
		return fmt.Errorf("%w: init: %w", ErrMalformedCommand, err)
	}
	if p.TableID == nil || p.OurPlayerIndex == nil || p.PlayerNames == nil {
		return fmt.Errorf("%w: init: tableID, playerNames and ourPlayerIndex are required", ErrMalformedCommand)
	}

	state := game.NewTableState(*p.TableID, p.PlayerNames, *p.OurPlayerIndex)

	t.mu.Lock()
	t.tables[state.TableID] = state
	snapshot := state.Clone()
	t.mu.Unlock()

	t.logger.Info("game initialized", "table_id", state.TableID, "players", len(state.PlayerNames), "seat", state.OurPlayerIndex)
	t.bus.Publish(ctx, events.TableInitialized{State: snapshot})

	//nolint:errcheck // Send logs its own failures
	t.sender.Send(ctx, protocol.CmdGetGameInfo2, map[string]any{"tableID": state.TableID})
	return nil
}

// handleGameAction tracks turn changes. Other action types are not interpreted.
func (t *Tracker) handleGameAction(ctx context.Context, cmd events.CommandReceived) error {
	var p gameActionPayload
	if err := cmd.Bind(&p); err != nil {
		return fmt.Errorf("%w: gameAction: %w", ErrMalformedCommand, err)
	}
	if p.TableID == nil {
		return fmt.Errorf("%w: gameAction: tableID is required", ErrMalformedCommand)
	}
	if p.Action.Type != actionTurn {
		return nil
	}

	t.mu.Lock()
	state, ok := t.tables[*p.TableID]
	if !ok {
		t.mu.Unlock()
		return nil
	}
	if p.Action.CurrentPlayerIndex == nil || !state.ValidSeat(*p.Action.CurrentPlayerIndex) {
		t.mu.Unlock()
		return fmt.Errorf("%w: gameAction: turn for table %d has no valid currentPlayerIndex", ErrMalformedCommand, *p.TableID)
	}
	state.CurrentPlayerIndex = *p.Action.CurrentPlayerIndex
	ourTurn := state.IsOurTurn()
	snapshot := state.Clone()
	t.mu.Unlock()

	if ourTurn {
		t.logger.Info("our turn", "table_id", snapshot.TableID)
		t.bus.Publish(ctx, events.OurTurn{State: snapshot})
	}
	return nil
}

// handleChat relays pings addressed to this bot onto the process-wide bus.
func (t *Tracker) handleChat(ctx context.Context, cmd events.CommandReceived) error {
	var p chatPayload
	if err := cmd.Bind(&p); err != nil {
		return fmt.Errorf("%w: chat: %w", ErrMalformedCommand, err)
	}
	if !t.addressedToUs(p) {
		return nil
	}

	first, _, _ := strings.Cut(p.Msg, " ")
	if first == pingToken {
		t.logger.Debug("ping received", "from", p.Who)
		t.global.Publish(ctx, events.GlobalPing{Recipient: p.Who})
	}
	return nil
}

// addressedToUs keeps private messages to this bot and prefixed room commands.
func (t *Tracker) addressedToUs(p chatPayload) bool {
	if p.Recipient == t.username {
		return true
	}
	return p.Room != "" && strings.HasPrefix(p.Msg, commandPrefix)
}

// handleGlobalPing answers a ping observed by any bot in the process.
func (t *Tracker) handleGlobalPing(ctx context.Context, ev events.GlobalPing) error {
	//nolint:errcheck // Send logs its own failures
	t.sender.Send(ctx, protocol.CmdChatPM, map[string]any{
		"msg":       "pong",
		"recipient": ev.Recipient,
		"room":      "",
	})
	return nil
}

func (t *Tracker) handleWelcome(_ context.Context, cmd events.CommandReceived) error {
	var p welcomePayload
	if err := cmd.Bind(&p); err != nil {
		return fmt.Errorf("%w: welcome: %w", ErrMalformedCommand, err)
	}
	if p.Username != t.username {
		t.logger.Error("logged in as unexpected user", "server_username", p.Username, "expected", t.username)
	}
	t.logger.Info("welcome received")
	return nil
}

// handleServerNotice logs warning and error commands from the server.
func (t *Tracker) handleServerNotice(_ context.Context, cmd events.CommandReceived) error {
	t.logger.Warn("server notice", "command", cmd.Name, "payload", cmd.Payload)
	return nil
}

func (t *Tracker) ignore(_ context.Context, cmd events.CommandReceived) error {
	t.logger.Debug("command ignored", "command", cmd.Name)
	return nil
}
