// Package strategy decides the move a bot makes on its turn.
//
// Strategies are looked up by the name given in each bot's configuration.
// Names are registered explicitly at startup and matched case-insensitively.
package strategy

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/game"
)

// Logger defines the logging interface handed to strategies.
type Logger interface {
	Info(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}

// Strategy chooses an action for the table the bot must move at.
//
// DecideAction may take as long as it likes; it should return promptly once
// ctx is cancelled. The returned action must not include "tableID".
type Strategy interface {
	DecideAction(ctx context.Context, state game.TableState) (game.Action, error)
}

// Constructor builds a fresh strategy for one bot instance.
type Constructor func(logger Logger) Strategy

// Registry maps configured strategy names to constructors.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	names        []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// DefaultRegistry returns a registry holding every built-in strategy.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(SimpleName, func(logger Logger) Strategy { return NewSimple(logger) })
	return r
}

// Register adds a constructor under name.
func (r *Registry) Register(name string, ctor Constructor) error {
	key := strings.ToLower(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateStrategy, name)
	}
	r.constructors[key] = ctor
	r.names = append(r.names, name)
	return nil
}

// MustRegister is Register for package-level setup; it panics on a duplicate.
func (r *Registry) MustRegister(name string, ctor Constructor) {
	if err := r.Register(name, ctor); err != nil {
		panic(err)
	}
}

// New builds the strategy registered under name.
func (r *Registry) New(name string, logger Logger) (Strategy, error) {
	r.mu.RLock()
	ctor, ok := r.constructors[strings.ToLower(name)]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return ctor(logger), nil
}

// Check fails if any of names is not registered.
func (r *Registry) Check(names ...string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range names {
		if _, ok := r.constructors[strings.ToLower(name)]; !ok {
			return fmt.Errorf("%w: %q (known: %s)", ErrUnknownStrategy, name, strings.Join(r.names, ", "))
		}
	}
	return nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := slices.Clone(r.names)
	slices.Sort(names)
	return names
}
