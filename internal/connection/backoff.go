package connection

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Backoff yields reconnect delays: base, doubling on every call, capped at max.
// Reset returns it to base. Not safe for concurrent use.
type Backoff struct {
	exp *backoff.ExponentialBackOff
}

// NewBackoff creates a deterministic (no jitter) doubling backoff.
func NewBackoff(base, maxDelay time.Duration) *Backoff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = base
	exp.MaxInterval = maxDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.Reset()
	return &Backoff{exp: exp}
}

// Next returns the delay to wait now and advances to the following one.
func (b *Backoff) Next() time.Duration {
	return b.exp.NextBackOff()
}

// Reset starts the sequence again from base.
func (b *Backoff) Reset() {
	b.exp.Reset()
}
