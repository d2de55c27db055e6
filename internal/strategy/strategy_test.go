package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/game"
)

func TestRegistry_LookupIsCaseInsensitive(t *testing.T) {
	r := DefaultRegistry()

	for _, name := range []string{"SimpleStrategy", "simplestrategy", "SIMPLESTRATEGY"} {
		s, err := r.New(name, nil)
		if err != nil {
			t.Errorf("New(%q) error = %v", name, err)
			continue
		}
		if _, ok := s.(*Simple); !ok {
			t.Errorf("New(%q) = %T, want *Simple", name, s)
		}
	}
}

func TestRegistry_Unknown(t *testing.T) {
	r := DefaultRegistry()

	if _, err := r.New("GeniusStrategy", nil); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("New() error = %v, want ErrUnknownStrategy", err)
	}
	if err := r.Check("SimpleStrategy", "GeniusStrategy"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("Check() error = %v, want ErrUnknownStrategy", err)
	}
	if err := r.Check("simplestrategy"); err != nil {
		t.Errorf("Check() error = %v, want nil", err)
	}
}

func TestRegistry_Duplicate(t *testing.T) {
	r := DefaultRegistry()
	err := r.Register("simpleSTRATEGY", func(Logger) Strategy { return NewSimple(nil) })
	if !errors.Is(err, ErrDuplicateStrategy) {
		t.Errorf("Register() error = %v, want ErrDuplicateStrategy", err)
	}
	if got := r.Names(); len(got) != 1 || got[0] != SimpleName {
		t.Errorf("Names() = %v", got)
	}
}

func TestSimple_DecideAction(t *testing.T) {
	tests := []struct {
		name  string
		state game.TableState
		want  game.Action
	}{
		{
			name:  "clue next seat",
			state: game.TableState{TableID: 5, PlayerNames: []string{"a", "b", "c"}, OurPlayerIndex: 1, ClueTokens: 3},
			want:  game.Action{"type": "clueRank", "target": 2, "value": 1},
		},
		{
			name:  "clue wraps around",
			state: game.TableState{TableID: 5, PlayerNames: []string{"a", "b", "c"}, OurPlayerIndex: 2, ClueTokens: 8},
			want:  game.Action{"type": "clueRank", "target": 0, "value": 1},
		},
		{
			name:  "discard without clues",
			state: game.TableState{TableID: 5, PlayerNames: []string{"a", "b"}, OurPlayerIndex: 0, ClueTokens: 0},
			want:  game.Action{"type": "discard", "target": 123},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSimple(nil)
			s.ThinkTime = 0

			got, err := s.DecideAction(context.Background(), tt.state)
			if err != nil {
				t.Fatalf("DecideAction() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("DecideAction() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("action[%q] = %v, want %v", k, got[k], v)
				}
			}
			if _, ok := got["tableID"]; ok {
				t.Error("strategy must not set tableID")
			}
		})
	}
}

func TestSimple_NoPlayers(t *testing.T) {
	s := NewSimple(nil)
	s.ThinkTime = 0

	_, err := s.DecideAction(context.Background(), game.TableState{ClueTokens: 8})
	if !errors.Is(err, ErrNoPlayers) {
		t.Errorf("DecideAction() error = %v, want ErrNoPlayers", err)
	}
}

func TestSimple_ThinkTimeCancelled(t *testing.T) {
	s := NewSimple(nil)
	s.ThinkTime = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := s.DecideAction(ctx, game.TableState{PlayerNames: []string{"a"}, ClueTokens: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("DecideAction() error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("DecideAction ignored cancellation")
	}
}
