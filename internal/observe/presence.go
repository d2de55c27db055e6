package observe

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/eventbus"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/events"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/game"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/mqtt"
)

// Publisher is the part of the MQTT client Presence needs.
type Publisher interface {
	PublishRetained(topic string, payload []byte) error
	PublishEvent(topic string, payload []byte) error
}

// BotStatus is the retained body of a bot status topic.
type BotStatus struct {
	Status    string  `json:"status"`
	RetryInS  float64 `json:"retry_in_s,omitempty"`
	Error     string  `json:"error,omitempty"`
	Timestamp string  `json:"timestamp"`
}

// BotAction is the body of a bot action topic.
type BotAction struct {
	TableID    int         `json:"table_id"`
	Action     game.Action `json:"action"`
	DecisionMS int64       `json:"decision_ms"`
	Timestamp  string      `json:"timestamp"`
}

// Presence mirrors bot status and actions to MQTT.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Presence struct {
	pub    Publisher
	topics mqtt.Topics
	logger Logger
	now    func() time.Time

	mu   sync.Mutex
	last map[string]BotStatus
}

// NewPresence creates a Presence observer.
func NewPresence(pub Publisher, logger Logger) *Presence {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Presence{pub: pub, logger: logger, now: time.Now, last: make(map[string]BotStatus)}
}

// Attach publishes status changes of bot. Detaching marks the bot stopped.
func (p *Presence) Attach(bot string, bus *eventbus.Bus) func() {
	offConn := eventbus.On(bus, func(_ context.Context, ev events.ConnectionChanged) error {
		status := BotStatus{Status: connectionState(ev.Connected), RetryInS: ev.RetryIn.Seconds()}
		if ev.Err != nil {
			status.Error = ev.Err.Error()
		}
		p.publishStatus(bot, status)
		return nil
	})

	offAction := eventbus.On(bus, func(_ context.Context, ev events.ActionSent) error {
		p.publish(p.topics.BotAction(bot), false, BotAction{
			TableID:    ev.TableID,
			Action:     ev.Action,
			DecisionMS: ev.DecisionTime.Milliseconds(),
			Timestamp:  p.timestamp(),
		})
		return nil
	})

	return func() {
		offConn()
		offAction()
		p.publishStatus(bot, BotStatus{Status: StateStopped})
	}
}

func (p *Presence) publishStatus(bot string, status BotStatus) {
	status.Timestamp = p.timestamp()

	p.mu.Lock()
	p.last[bot] = status
	p.mu.Unlock()

	p.publish(p.topics.BotStatus(bot), true, status)
}

// Republish sends the last known status of every bot again. It is meant for
// broker reconnects, where retained state may have been lost.
func (p *Presence) Republish() {
	p.mu.Lock()
	bots := make([]string, 0, len(p.last))
	for bot := range p.last {
		bots = append(bots, bot)
	}
	sort.Strings(bots)
	statuses := make([]BotStatus, len(bots))
	for i, bot := range bots {
		statuses[i] = p.last[bot]
	}
	p.mu.Unlock()

	for i, bot := range bots {
		p.publish(p.topics.BotStatus(bot), true, statuses[i])
	}
}

// publish marshals v and sends it. Failures are logged only.
func (p *Presence) publish(topic string, retained bool, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		p.logger.Warn("encoding presence payload", "topic", topic, "error", err)
		return
	}

	if retained {
		err = p.pub.PublishRetained(topic, payload)
	} else {
		err = p.pub.PublishEvent(topic, payload)
	}
	if err != nil {
		p.logger.Warn("publishing presence", "topic", topic, "error", err)
	}
}

func (p *Presence) timestamp() string {
	return p.now().UTC().Format(time.RFC3339)
}
