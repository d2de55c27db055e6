package observe

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/eventbus"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/events"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/game"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/database"
)

type published struct {
	topic    string
	payload  []byte
	retained bool
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) PublishRetained(topic string, payload []byte) error {
	return f.record(topic, payload, true)
}

func (f *fakePublisher) PublishEvent(topic string, payload []byte) error {
	return f.record(topic, payload, false)
}

func (f *fakePublisher) record(topic string, payload []byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{topic, payload, retained})
	return nil
}

type warnCounter struct {
	mu    sync.Mutex
	warns int
}

func (w *warnCounter) Debug(string, ...any) {}

func (w *warnCounter) Warn(string, ...any) {
	w.mu.Lock()
	w.warns++
	w.mu.Unlock()
}

var fixedNow = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

func TestPresence(t *testing.T) {
	pub := &fakePublisher{}
	p := NewPresence(pub, nil)
	p.now = fixedNow

	bus := eventbus.New("oraclehlb1")
	detach := p.Attach("oraclehlb1", bus)

	ctx := context.Background()
	bus.Publish(ctx, events.ConnectionChanged{Connected: true})
	bus.Publish(ctx, events.ActionSent{
		TableID:      5,
		Action:       game.Action{"type": "play", "target": 3, "tableID": 5},
		DecisionTime: 1500 * time.Millisecond,
	})
	bus.Publish(ctx, events.ConnectionChanged{Err: errors.New("read: EOF"), RetryIn: 2 * time.Second})
	detach()

	// Detached: nothing more is published.
	bus.Publish(ctx, events.ConnectionChanged{Connected: true})

	want := []struct {
		topic    string
		retained bool
		status   string
	}{
		{"oraclehlb/bot/oraclehlb1/status", true, StateConnected},
		{"oraclehlb/bot/oraclehlb1/action", false, ""},
		{"oraclehlb/bot/oraclehlb1/status", true, StateReconnecting},
		{"oraclehlb/bot/oraclehlb1/status", true, StateStopped},
	}
	if len(pub.msgs) != len(want) {
		t.Fatalf("published %d messages, want %d", len(pub.msgs), len(want))
	}

	for i, w := range want {
		got := pub.msgs[i]
		if got.topic != w.topic || got.retained != w.retained {
			t.Errorf("msg %d = %s retained=%v, want %s retained=%v", i, got.topic, got.retained, w.topic, w.retained)
		}
		if w.status == "" {
			continue
		}
		var s BotStatus
		if err := json.Unmarshal(got.payload, &s); err != nil {
			t.Fatalf("msg %d: %v", i, err)
		}
		if s.Status != w.status || s.Timestamp != "2026-01-02T03:04:05Z" {
			t.Errorf("msg %d status = %+v", i, s)
		}
	}

	var reconnect BotStatus
	json.Unmarshal(pub.msgs[2].payload, &reconnect) //nolint:errcheck // Checked above
	if reconnect.RetryInS != 2 || reconnect.Error != "read: EOF" {
		t.Errorf("reconnect status = %+v", reconnect)
	}

	var action BotAction
	if err := json.Unmarshal(pub.msgs[1].payload, &action); err != nil {
		t.Fatal(err)
	}
	if action.TableID != 5 || action.DecisionMS != 1500 || action.Action["type"] != "play" {
		t.Errorf("action = %+v", action)
	}
}

func TestPresence_PublishFailureIsLogged(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker gone")}
	logger := &warnCounter{}
	p := NewPresence(pub, logger)

	bus := eventbus.New("oraclehlb1")
	detach := p.Attach("oraclehlb1", bus)
	bus.Publish(context.Background(), events.ConnectionChanged{Connected: true})
	detach()

	if logger.warns != 2 {
		t.Errorf("warnings = %d, want 2", logger.warns)
	}
}

func TestPresence_RepublishAfterReconnect(t *testing.T) {
	pub := &fakePublisher{}
	p := NewPresence(pub, nil)
	p.now = fixedNow

	ctx := context.Background()
	busA := eventbus.New("a")
	busB := eventbus.New("b")
	p.Attach("a", busA)
	detachB := p.Attach("b", busB)

	busA.Publish(ctx, events.ConnectionChanged{Connected: true})
	busB.Publish(ctx, events.ConnectionChanged{RetryIn: time.Second})
	busA.Publish(ctx, events.ActionSent{TableID: 1, Action: game.Action{"type": "play"}})
	detachB()

	pub.msgs = nil
	p.Republish()

	want := []struct{ topic, status string }{
		{"oraclehlb/bot/a/status", StateConnected},
		{"oraclehlb/bot/b/status", StateStopped},
	}
	if len(pub.msgs) != len(want) {
		t.Fatalf("republished %d messages, want %d", len(pub.msgs), len(want))
	}
	for i, w := range want {
		var s BotStatus
		if err := json.Unmarshal(pub.msgs[i].payload, &s); err != nil {
			t.Fatal(err)
		}
		if pub.msgs[i].topic != w.topic || !pub.msgs[i].retained || s.Status != w.status {
			t.Errorf("msg %d = %s %+v, want %s %s", i, pub.msgs[i].topic, s, w.topic, w.status)
		}
	}
}

type metricCall struct {
	kind    string
	bot     string
	label   string
	tableID int
	dur     time.Duration
}

type fakeMetrics struct {
	calls []metricCall
}

func (f *fakeMetrics) WriteBotAction(bot string, tableID int, actionType string, decision time.Duration) {
	f.calls = append(f.calls, metricCall{"action", bot, actionType, tableID, decision})
}

func (f *fakeMetrics) WriteBotConnection(bot, state string, retryIn time.Duration) {
	f.calls = append(f.calls, metricCall{"connection", bot, state, 0, retryIn})
}

func TestTelemetry(t *testing.T) {
	m := &fakeMetrics{}
	bus := eventbus.New("b")
	detach := NewTelemetry(m).Attach("b", bus)

	ctx := context.Background()
	bus.Publish(ctx, events.ConnectionChanged{Connected: true})
	bus.Publish(ctx, events.ActionSent{TableID: 9, Action: game.Action{"type": "discard"}, DecisionTime: time.Second})
	bus.Publish(ctx, events.ActionSent{TableID: 9, Action: game.Action{}})
	bus.Publish(ctx, events.ConnectionChanged{RetryIn: 4 * time.Second})
	detach()

	want := []metricCall{
		{"connection", "b", StateConnected, 0, 0},
		{"action", "b", "discard", 9, time.Second},
		{"action", "b", "unknown", 9, 0},
		{"connection", "b", StateReconnecting, 0, 4 * time.Second},
		{"connection", "b", StateStopped, 0, 0},
	}
	if len(m.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", m.calls, want)
	}
	for i := range want {
		if m.calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, m.calls[i], want[i])
		}
	}
}

func openJournal(t *testing.T) *Journal {
	t.Helper()
	db, err := database.Open(database.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	j, err := NewJournal(context.Background(), db)
	if err != nil {
		t.Fatalf("NewJournal() error = %v", err)
	}
	j.now = fixedNow
	return j
}

func TestJournal_RecordsTablesAndActions(t *testing.T) {
	j := openJournal(t)
	bus := eventbus.New("oraclehlb1")
	detach := j.Attach("oraclehlb1", bus)

	ctx := context.Background()
	bus.Publish(ctx, events.TableInitialized{State: *game.NewTableState(7, []string{"alice", "oraclehlb1"}, 1)})
	bus.Publish(ctx, events.ActionSent{TableID: 7, Action: game.Action{"type": "clueRank", "target": 0, "value": 1, "tableID": 7}, DecisionTime: 250 * time.Millisecond})
	bus.Publish(ctx, events.ActionSent{TableID: 7, Action: game.Action{"type": "discard", "target": 123, "tableID": 7}})
	bus.Publish(ctx, events.ActionSent{TableID: 8, Action: game.Action{"type": "play", "target": 1, "tableID": 8}})
	detach()

	// Not recorded once detached.
	bus.Publish(ctx, events.ActionSent{TableID: 7, Action: game.Action{"type": "play"}})

	n, err := j.TableCount(ctx, "oraclehlb1")
	if err != nil || n != 1 {
		t.Errorf("TableCount() = %d, %v; want 1", n, err)
	}

	records, err := j.Actions(ctx, "oraclehlb1", 7, 0)
	if err != nil {
		t.Fatalf("Actions() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Actions(table 7) = %d records, want 2", len(records))
	}
	if records[0].ActionType != "discard" || records[1].ActionType != "clueRank" {
		t.Errorf("order = %s, %s; want newest first", records[0].ActionType, records[1].ActionType)
	}
	if records[1].DecisionMS != 250 || records[1].Payload["value"] != float64(1) {
		t.Errorf("clue record = %+v", records[1])
	}
	if !records[0].SentAt.Equal(fixedNow()) {
		t.Errorf("SentAt = %v", records[0].SentAt)
	}

	all, err := j.Actions(ctx, "oraclehlb1", 0, 1)
	if err != nil || len(all) != 1 || all[0].TableID != 8 {
		t.Errorf("Actions(all, limit 1) = %+v, %v", all, err)
	}

	other, err := j.Actions(ctx, "someone-else", 0, 0)
	if err != nil || len(other) != 0 {
		t.Errorf("Actions(other bot) = %+v, %v", other, err)
	}
}

func TestNewJournal_Idempotent(t *testing.T) {
	db, err := database.Open(database.Config{Path: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	for range 2 {
		if _, err := NewJournal(context.Background(), db); err != nil {
			t.Fatalf("NewJournal() error = %v", err)
		}
	}
}
