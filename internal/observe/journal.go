package observe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/eventbus"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/events"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/database"
	"github.com/antowkas/oracle-hanabi-live-bot/migrations"
)

// Journal query limits.
const (
	defaultActionLimit = 50
	maxActionLimit     = 500
)

// ActionRecord is one journalled action.
type ActionRecord struct {
	ID         int64          `json:"id"`
	Bot        string         `json:"bot"`
	TableID    int            `json:"table_id"`
	ActionType string         `json:"action_type"`
	Payload    map[string]any `json:"payload"`
	DecisionMS int64          `json:"decision_ms"`
	SentAt     time.Time      `json:"sent_at"`
}

// Journal writes every table a bot joins and every action it sends to SQLite.
//
// Thread Safety:
//   - All methods are safe for concurrent use; the database serialises writers.
type Journal struct {
	db  *database.DB
	now func() time.Time
}

// NewJournal brings the journal schema up to date and returns the observer.
func NewJournal(ctx context.Context, db *database.DB) (*Journal, error) {
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		return nil, fmt.Errorf("migrating journal: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

// Attach implements bot.Observer. Insert failures surface as bus handler errors.
func (j *Journal) Attach(bot string, bus *eventbus.Bus) func() {
	offTable := eventbus.On(bus, func(ctx context.Context, ev events.TableInitialized) error {
		return j.recordTable(ctx, bot, ev)
	})
	offAction := eventbus.On(bus, func(ctx context.Context, ev events.ActionSent) error {
		return j.recordAction(ctx, bot, ev)
	})

	return func() {
		offTable()
		offAction()
	}
}

func (j *Journal) recordTable(ctx context.Context, bot string, ev events.TableInitialized) error {
	players, err := json.Marshal(ev.State.PlayerNames)
	if err != nil {
		return fmt.Errorf("marshalling players: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO tables (bot, table_id, players, our_index, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		bot, ev.State.TableID, string(players), ev.State.OurPlayerIndex,
		j.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("journalling table %d: %w", ev.State.TableID, err)
	}
	return nil
}

func (j *Journal) recordAction(ctx context.Context, bot string, ev events.ActionSent) error {
	payload, err := json.Marshal(ev.Action)
	if err != nil {
		return fmt.Errorf("marshalling action: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO actions (bot, table_id, action_type, payload, decision_ms, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		bot, ev.TableID, actionType(ev.Action), string(payload),
		ev.DecisionTime.Milliseconds(),
		j.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("journalling action on table %d: %w", ev.TableID, err)
	}
	return nil
}

// Actions returns the most recent actions of bot, newest first.
// tableID 0 matches every table. limit <= 0 uses the default page size.
func (j *Journal) Actions(ctx context.Context, bot string, tableID, limit int) ([]ActionRecord, error) {
	if limit <= 0 {
		limit = defaultActionLimit
	}
	if limit > maxActionLimit {
		limit = maxActionLimit
	}

	query := `SELECT id, bot, table_id, action_type, payload, decision_ms, sent_at
		FROM actions WHERE bot = ?`
	args := []any{bot}
	if tableID != 0 {
		query += " AND table_id = ?"
		args = append(args, tableID)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying actions: %w", err)
	}
	defer rows.Close()

	records := []ActionRecord{}
	for rows.Next() {
		var (
			r       ActionRecord
			payload string
			sentAt  string
		)
		if err := rows.Scan(&r.ID, &r.Bot, &r.TableID, &r.ActionType, &payload, &r.DecisionMS, &sentAt); err != nil {
			return nil, fmt.Errorf("scanning action: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &r.Payload); err != nil {
			return nil, fmt.Errorf("decoding action %d: %w", r.ID, err)
		}
		r.SentAt, _ = time.Parse(time.RFC3339Nano, sentAt) //nolint:errcheck // Written by recordAction
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actions: %w", err)
	}
	return records, nil
}

// TableCount returns how many tables bot has been seated at.
func (j *Journal) TableCount(ctx context.Context, bot string) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tables WHERE bot = ?", bot).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting tables: %w", err)
	}
	return n, nil
}
