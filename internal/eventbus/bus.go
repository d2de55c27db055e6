package eventbus

import (
	"context"
	"fmt"
	"sync"
)

// Event is a value carried on a Bus. Handlers are selected by EventType.
type Event interface {
	EventType() string
}

// Handler reacts to one published event.
// A returned error (or a panic) is logged by the bus and never reaches the publisher.
type Handler func(ctx context.Context, ev Event) error

// Logger defines the logging interface for the bus.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Error(string, ...any) {}

type subscription struct {
	handler Handler
}

// Bus is an in-memory publish/subscribe fan-out.
//
// Thread Safety:
//   - Subscribe and Publish are safe for concurrent use.
//   - Handlers for one Publish run concurrently with each other.
type Bus struct {
	name   string
	logger Logger

	mu       sync.RWMutex
	handlers map[string][]*subscription
}

// New creates an empty bus. The name only appears in logs.
func New(name string) *Bus {
	return &Bus{
		name:     name,
		logger:   noopLogger{},
		handlers: make(map[string][]*subscription),
	}
}

// SetLogger sets the logger used for handler failures.
func (b *Bus) SetLogger(logger Logger) {
	b.logger = logger
}

// Subscribe registers handler for every future publish of eventType.
// The returned func removes the subscription; it is safe to call more than once.
func (b *Bus) Subscribe(eventType string, handler Handler) func() {
	sub := &subscription{handler: handler}

	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], sub)
	b.mu.Unlock()

	b.logger.Debug("handler subscribed", "bus", b.name, "event", eventType)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(eventType, sub) })
	}
}

// remove drops sub without mutating any slice a concurrent Publish may hold.
func (b *Bus) remove(eventType string, sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.handlers[eventType]
	kept := make([]*subscription, 0, len(current))
	for _, s := range current {
		if s != sub {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		delete(b.handlers, eventType)
		return
	}
	b.handlers[eventType] = kept
}

// On subscribes a handler typed to the concrete event E.
// E must be a value type whose zero value reports its EventType.
func On[E Event](b *Bus, handler func(ctx context.Context, ev E) error) func() {
	var zero E
	return b.Subscribe(zero.EventType(), func(ctx context.Context, ev Event) error {
		typed, ok := ev.(E)
		if !ok {
			return fmt.Errorf("%w: got %T", ErrEventMismatch, ev)
		}
		return handler(ctx, typed)
	})
}

// Publish invokes every handler registered for ev's type and waits for all of
// them. Handler failures are collected, logged and swallowed.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	eventType := ev.EventType()

	b.mu.RLock()
	subs := b.handlers[eventType]
	b.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	errs := make([]error, len(subs))
	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = invoke(ctx, sub.handler, ev)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			b.logger.Error("event handler failed", "bus", b.name, "event", eventType, "error", err)
		}
	}
}

// invoke runs one handler, turning a panic into an error.
func invoke(ctx context.Context, handler Handler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return handler(ctx, ev)
}

// HandlerCount returns the number of handlers registered for eventType.
func (b *Bus) HandlerCount(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}
