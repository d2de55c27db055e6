package protocol

import (
	"context"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/eventbus"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/events"
)

// maxLoggedFrame bounds how much of a malformed frame is logged.
const maxLoggedFrame = 256

// Logger defines the logging interface for the parser.
type Logger interface {
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}

// Parser turns RawMessage events into CommandReceived events on the same bus.
type Parser struct {
	bus    *eventbus.Bus
	logger Logger
}

// NewParser creates a parser and subscribes it to bus.
func NewParser(bus *eventbus.Bus, logger Logger) *Parser {
	if logger == nil {
		logger = noopLogger{}
	}
	p := &Parser{bus: bus, logger: logger}
	eventbus.On(bus, p.handleRawMessage)
	return p
}

// handleRawMessage decodes one frame. Malformed frames are logged and dropped.
func (p *Parser) handleRawMessage(ctx context.Context, ev events.RawMessage) error {
	name, payload, raw, err := Decode(ev.Text)
	if err != nil {
		p.logger.Error("failed to parse message", "frame", truncate(ev.Text), "error", err)
		return nil
	}

	p.bus.Publish(ctx, events.CommandReceived{
		Name:    name,
		Payload: payload,
		Raw:     raw,
	})
	return nil
}

func truncate(s string) string {
	if len(s) <= maxLoggedFrame {
		return s
	}
	return s[:maxLoggedFrame] + "..."
}
