package client

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestHeartbeatDeclaresDeadAfterMissedProbes(t *testing.T) {
	var dead atomic.Int32
	probeErr := errors.New("unreachable")

	h := newHeartbeat(10*time.Millisecond,
		func() error { return probeErr },
		func() { dead.Add(1) },
	)
	h.start()
	defer h.stop()

	deadline := time.After(2 * time.Second)
	for dead.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("heartbeat never declared the device dead")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestHeartbeatResetsOnSuccess(t *testing.T) {
	var calls atomic.Int32
	var dead atomic.Int32

	// Fail twice, then succeed, repeatedly. The miss counter never
	// reaches the threshold of three.
	h := newHeartbeat(5*time.Millisecond,
		func() error {
			if calls.Add(1)%3 == 0 {
				return nil
			}
			return errors.New("unreachable")
		},
		func() { dead.Add(1) },
	)
	h.start()

	time.Sleep(200 * time.Millisecond)
	h.stop()

	if dead.Load() != 0 {
		t.Errorf("device declared dead %d times despite recovering probes", dead.Load())
	}
}

func TestHeartbeatStopIsIdempotent(t *testing.T) {
	h := newHeartbeat(time.Hour, func() error { return nil }, nil)
	h.start()
	h.stop()
	h.stop()
}

func TestBackoffAdvancesAndResets(t *testing.T) {
	b := newBackoff()
	b.jitter = 0

	first := b.next()
	second := b.next()
	if first != initialBackoff {
		t.Errorf("first delay: got %v, want %v", first, initialBackoff)
	}
	if second != 2*initialBackoff {
		t.Errorf("second delay: got %v, want %v", second, 2*initialBackoff)
	}

	for i := 0; i < 20; i++ {
		b.next()
	}
	if d := b.next(); d > maxBackoff {
		t.Errorf("delay exceeded cap: %v", d)
	}

	b.reset()
	if d := b.next(); d != initialBackoff {
		t.Errorf("delay after reset: got %v, want %v", d, initialBackoff)
	}
	if b.attemptCount() != 1 {
		t.Errorf("attempt count after reset+next: %d", b.attemptCount())
	}
}

func TestRetryBackoffPolicies(t *testing.T) {
	fixed := newRetryBackoff(50*time.Millisecond, time.Second, RetryFixed)
	for i := 0; i < 3; i++ {
		if d := fixed.next(); d != 50*time.Millisecond {
			t.Errorf("fixed delay %d: got %v, want 50ms", i, d)
		}
	}

	exp := newRetryBackoff(100*time.Millisecond, 400*time.Millisecond, RetryExponential)
	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		400 * time.Millisecond, // capped
	}
	for i, w := range want {
		if d := exp.next(); d != w {
			t.Errorf("exponential delay %d: got %v, want %v", i, d, w)
		}
	}
}
