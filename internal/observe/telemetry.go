package observe

import (
	"context"
	"time"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/eventbus"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/events"
)

// MetricsWriter is the part of the InfluxDB client Telemetry needs.
// Writes are asynchronous and never fail the caller.
type MetricsWriter interface {
	WriteBotAction(bot string, tableID int, actionType string, decision time.Duration)
	WriteBotConnection(bot, state string, retryIn time.Duration)
}

// Telemetry records decision times and connection changes as time series.
type Telemetry struct {
	w MetricsWriter
}

// NewTelemetry creates a Telemetry observer.
func NewTelemetry(w MetricsWriter) *Telemetry {
	return &Telemetry{w: w}
}

// Attach implements bot.Observer.
func (t *Telemetry) Attach(bot string, bus *eventbus.Bus) func() {
	offConn := eventbus.On(bus, func(_ context.Context, ev events.ConnectionChanged) error {
		t.w.WriteBotConnection(bot, connectionState(ev.Connected), ev.RetryIn)
		return nil
	})
	offAction := eventbus.On(bus, func(_ context.Context, ev events.ActionSent) error {
		t.w.WriteBotAction(bot, ev.TableID, actionType(ev.Action), ev.DecisionTime)
		return nil
	})

	return func() {
		offConn()
		offAction()
		t.w.WriteBotConnection(bot, StateStopped, 0)
	}
}
