package client

import (
	"math/rand"
	"sync"
	"time"
)

// Reconnect backoff defaults.
const (
	initialBackoff    = 1 * time.Second
	maxBackoff        = 60 * time.Second
	backoffMultiplier = 2.0
	jitterFactor      = 0.25
)

// defaultRetryInterval is the pause before each command resend.
const defaultRetryInterval = 100 * time.Millisecond

// RetryPolicy selects how the pause between command resends grows.
type RetryPolicy string

const (
	// RetryFixed pauses the same interval before every resend.
	RetryFixed RetryPolicy = "fixed"

	// RetryExponential doubles the pause after each resend, capped at
	// the request timeout.
	RetryExponential RetryPolicy = "exponential"
)

// backoff calculates exponential reconnect delays with jitter.
type backoff struct {
	mu sync.Mutex

	current    time.Duration
	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64

	attempts int

	rng *rand.Rand
}

func newBackoff() *backoff {
	return &backoff{
		current:    initialBackoff,
		initial:    initialBackoff,
		max:        maxBackoff,
		multiplier: backoffMultiplier,
		jitter:     jitterFactor,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// newRetryBackoff builds the pacing for command resends. Retries are
// not jittered so their timing stays predictable.
func newRetryBackoff(interval, max time.Duration, policy RetryPolicy) *backoff {
	multiplier := 1.0
	if policy == RetryExponential {
		multiplier = backoffMultiplier
	}
	if max < interval {
		max = interval
	}
	return &backoff{
		current:    interval,
		initial:    interval,
		max:        max,
		multiplier: multiplier,
	}
}

// next returns the next delay (with jitter) and advances the backoff.
func (b *backoff) next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.addJitter(b.current)

	b.attempts++
	advanced := time.Duration(float64(b.current) * b.multiplier)
	if advanced > b.max {
		advanced = b.max
	}
	b.current = advanced

	return delay
}

// reset restores the initial delay. Call after a successful reconnect.
func (b *backoff) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.initial
	b.attempts = 0
}

func (b *backoff) attemptCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

func (b *backoff) addJitter(d time.Duration) time.Duration {
	if b.jitter <= 0 {
		return d
	}
	return d + time.Duration(float64(d)*b.jitter*b.rng.Float64())
}
