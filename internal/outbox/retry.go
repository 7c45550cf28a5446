package outbox

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy decides when a failed event may be attempted again and
// when its retry budget is spent.
type RetryPolicy struct {
	// Initial is the delay after the first failed attempt.
	Initial time.Duration
	// Multiplier grows the delay for each subsequent failure.
	Multiplier float64
	// Max caps the delay between attempts.
	Max time.Duration
	// MaxAttempts is the total attempt budget; once spent, the event is
	// dead and only manual intervention can revive it.
	MaxAttempts int
}

// DefaultRetryPolicy matches the cadence the backend expects from
// devices: 5s, 10s, 20s, 40s… capped at five minutes, five attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Initial:     5 * time.Second,
		Multiplier:  2,
		Max:         5 * time.Minute,
		MaxAttempts: 5,
	}
}

// Exhausted reports whether an event that has already failed attempts
// times has no retries left.
func (p RetryPolicy) Exhausted(attempts int) bool {
	return attempts >= p.MaxAttempts
}

// Delay returns the backoff delay after the given number of failed
// attempts (1-based). Randomization is disabled: retry times must be
// deterministic so the scheduling tests and the operator-facing status
// output agree with what the engine will actually do.
func (p RetryPolicy) Delay(attempts int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Initial
	b.RandomizationFactor = 0
	b.Multiplier = p.Multiplier
	b.MaxInterval = p.Max

	d := b.NextBackOff()
	for i := 1; i < attempts; i++ {
		d = b.NextBackOff()
	}
	return d
}

// NextRetryAt computes the absolute retry time after a failure, or nil
// when the budget is spent and the event should be dead-lettered.
func (p RetryPolicy) NextRetryAt(now time.Time, attempts int) *time.Time {
	if p.Exhausted(attempts) {
		return nil
	}
	t := now.Add(p.Delay(attempts))
	return &t
}
