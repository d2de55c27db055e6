package tracker

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/eventbus"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/events"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/game"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/protocol"
)

// Logger defines the logging interface for the tracker.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Sender sends one command to the game server.
type Sender interface {
	Send(ctx context.Context, command string, payload any) error
}

// commandHandler handles one decoded command.
type commandHandler func(ctx context.Context, cmd events.CommandReceived) error

// Tracker owns the table map of one bot.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - Handlers for different commands may overlap; table access is locked.
type Tracker struct {
	username string
	bus      *eventbus.Bus
	global   *eventbus.Bus
	sender   Sender
	logger   Logger

	handlers map[string]commandHandler

	mu     sync.RWMutex
	tables map[int]*game.TableState

	unsubscribe []func()
}

// New creates a tracker for username, subscribes it to bus and global, and
// validates that its registry covers every known inbound command.
func New(username string, bus, global *eventbus.Bus, sender Sender, logger Logger) (*Tracker, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	t := &Tracker{
		username: username,
		bus:      bus,
		global:   global,
		sender:   sender,
		logger:   logger,
		tables:   make(map[int]*game.TableState),
	}
	t.handlers = t.registry()

	if err := validateRegistry(t.handlers, protocol.InboundCommands); err != nil {
		return nil, err
	}

	t.unsubscribe = []func(){
		eventbus.On(bus, t.dispatch),
		eventbus.On(global, t.handleGlobalPing),
	}
	return t, nil
}

// Close detaches the tracker from both buses. The process-wide bus outlives
// the bot, so a restarted bot must not leave its old handler behind.
func (t *Tracker) Close() {
	for _, unsubscribe := range t.unsubscribe {
		unsubscribe()
	}
}

// registry maps every known inbound command to its handler.
func (t *Tracker) registry() map[string]commandHandler {
	return map[string]commandHandler{
		protocol.CmdWelcome:        t.handleWelcome,
		protocol.CmdWarning:        t.handleServerNotice,
		protocol.CmdError:          t.handleServerNotice,
		protocol.CmdChat:           t.handleChat,
		protocol.CmdTable:          t.ignore,
		protocol.CmdTableList:      t.ignore,
		protocol.CmdTableGone:      t.ignore,
		protocol.CmdTableStart:     t.ignore,
		protocol.CmdInit:           t.handleInit,
		protocol.CmdGameAction:     t.handleGameAction,
		protocol.CmdGameActionList: t.ignore,
		protocol.CmdDatabaseID:     t.ignore,
	}
}

// validateRegistry fails if any required command has no handler.
func validateRegistry(handlers map[string]commandHandler, required []string) error {
	var missing []string
	for _, name := range required {
		if handlers[name] == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingHandler, missing)
	}
	return nil
}

// dispatch routes a command to its handler. Unknown commands are a no-op.
func (t *Tracker) dispatch(ctx context.Context, cmd events.CommandReceived) error {
	handler, ok := t.handlers[cmd.Name]
	if !ok {
		handler = unknownCommand
	}
	return handler(ctx, cmd)
}

func unknownCommand(context.Context, events.CommandReceived) error {
	return nil
}

// Table returns a copy of one tracked table.
func (t *Tracker) Table(tableID int) (game.TableState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	state, ok := t.tables[tableID]
	if !ok {
		return game.TableState{}, false
	}
	return state.Clone(), true
}

// Tables returns copies of every tracked table, ordered by table id.
func (t *Tracker) Tables() []game.TableState {
	t.mu.RLock()
	out := make([]game.TableState, 0, len(t.tables))
	for _, state := range t.tables {
		out = append(out, state.Clone())
	}
	t.mu.RUnlock()

	slices.SortFunc(out, func(a, b game.TableState) int { return cmp.Compare(a.TableID, b.TableID) })
	return out
}
