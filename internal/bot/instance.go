package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/connection"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/eventbus"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/events"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/game"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/config"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/protocol"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/strategy"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/tracker"
)

// Logger is the logging interface shared by every part of an instance.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Observer watches an instance's bus, for example to report presence.
// Attach subscribes and returns the function that undoes it.
type Observer interface {
	Attach(botName string, bus *eventbus.Bus) (detach func())
}

// Config describes one instance.
type Config struct {
	Name   string
	Cookie string
	Server config.ServerConfig

	Strategy strategy.Strategy

	// Global is the process-wide bus shared by every instance.
	Global *eventbus.Bus

	Observers []Observer
}

// Instance is one running bot.
//
// Thread Safety:
//   - Tables and State are safe for concurrent use.
//   - Run must be called at most once.
type Instance struct {
	name     string
	bus      *eventbus.Bus
	conn     *connection.Manager
	tracker  *tracker.Tracker
	strategy strategy.Strategy
	logger   Logger

	detach []func()
	turns  sync.WaitGroup
}

// New wires an instance. Nothing touches the network until Run.
func New(cfg Config, logger Logger) (*Instance, error) {
	if cfg.Strategy == nil {
		return nil, fmt.Errorf("bot %s: no strategy", cfg.Name)
	}
	if cfg.Global == nil {
		return nil, fmt.Errorf("bot %s: no process-wide bus", cfg.Name)
	}

	bus := eventbus.New(cfg.Name)
	bus.SetLogger(logger)

	conn := connection.New(cfg.Server, cfg.Cookie, bus, logger)
	protocol.NewParser(bus, logger)

	tr, err := tracker.New(cfg.Name, bus, cfg.Global, conn, logger)
	if err != nil {
		return nil, fmt.Errorf("bot %s: %w", cfg.Name, err)
	}

	i := &Instance{
		name:     cfg.Name,
		bus:      bus,
		conn:     conn,
		tracker:  tr,
		strategy: cfg.Strategy,
		logger:   logger,
	}

	i.detach = append(i.detach, tr.Close, eventbus.On(bus, i.handleOurTurn))
	for _, o := range cfg.Observers {
		i.detach = append(i.detach, o.Attach(cfg.Name, bus))
	}
	return i, nil
}

// Name returns the bot's username.
func (i *Instance) Name() string {
	return i.name
}

// Run keeps the bot connected until ctx is cancelled, then waits for any
// turn still being decided and detaches from every bus.
func (i *Instance) Run(ctx context.Context) error {
	i.logger.Info("starting bot instance")
	defer i.close()

	err := i.conn.Run(ctx)
	i.turns.Wait()
	return err
}

func (i *Instance) close() {
	for _, detach := range i.detach {
		detach()
	}
	i.detach = nil
}

// Tables returns a snapshot of every tracked table.
func (i *Instance) Tables() []game.TableState {
	return i.tracker.Tables()
}

// State returns the connection state.
func (i *Instance) State() connection.State {
	return i.conn.State()
}

// handleOurTurn starts deciding the move without holding up the bus.
func (i *Instance) handleOurTurn(ctx context.Context, ev events.OurTurn) error {
	i.logger.Info("it's our turn", "table_id", ev.State.TableID)

	i.turns.Add(1)
	go func() {
		defer i.turns.Done()
		i.takeTurn(ctx, ev.State)
	}()
	return nil
}

// takeTurn asks the strategy for a move and sends it.
func (i *Instance) takeTurn(ctx context.Context, state game.TableState) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("strategy panicked", "table_id", state.TableID, "panic", r)
		}
	}()

	start := time.Now()
	action, err := i.strategy.DecideAction(ctx, state)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		i.logger.Error("strategy failed", "table_id", state.TableID, "error", err)
		return
	}

	payload := action.Clone()
	if payload == nil {
		payload = game.Action{}
	}
	payload["tableID"] = state.TableID

	if err := i.conn.Send(ctx, protocol.CmdAction, payload); err != nil {
		return
	}

	i.bus.Publish(ctx, events.ActionSent{
		TableID:      state.TableID,
		Action:       payload,
		DecisionTime: time.Since(start),
	})
}
