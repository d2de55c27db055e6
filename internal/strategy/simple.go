package strategy

import (
	"context"
	"time"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/game"
)

const (
	// SimpleName is the configuration name of the Simple strategy.
	SimpleName = "SimpleStrategy"

	// DefaultThinkTime is how long Simple pauses before answering.
	DefaultThinkTime = 500 * time.Millisecond

	// placeholderDiscardOrder stands in for a real card choice.
	placeholderDiscardOrder = 123
)

// Simple gives a rank 1 clue to the next seat while clue tokens remain and
// discards otherwise. It does not look at cards.
type Simple struct {
	ThinkTime time.Duration
	logger    Logger
}

// NewSimple returns a Simple strategy with the default think time.
func NewSimple(logger Logger) *Simple {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Simple{ThinkTime: DefaultThinkTime, logger: logger}
}

// DecideAction implements Strategy.
func (s *Simple) DecideAction(ctx context.Context, state game.TableState) (game.Action, error) {
	if s.ThinkTime > 0 {
		timer := time.NewTimer(s.ThinkTime)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if state.ClueTokens > 0 {
		if len(state.PlayerNames) == 0 {
			return nil, ErrNoPlayers
		}
		target := (state.OurPlayerIndex + 1) % len(state.PlayerNames)
		s.logger.Info("decided to give a clue", "table_id", state.TableID, "target", target)
		return game.Action{
			"type":   string(game.ActionRankClue),
			"target": target,
			"value":  1,
		}, nil
	}

	s.logger.Info("decided to discard", "table_id", state.TableID)
	return game.Action{
		"type":   string(game.ActionDiscard),
		"target": placeholderDiscardOrder,
	}, nil
}
