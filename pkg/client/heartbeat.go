package client

import (
	"sync"
	"time"
)

// maxMissedProbes is the number of consecutive failed liveness probes
// before the device is declared unreachable.
const maxMissedProbes = 3

// heartbeat periodically probes the device and reports when it stops
// answering. The probe itself is a cheap acked request; its built-in
// retry and timeout do the waiting, so the loop stays sequential.
type heartbeat struct {
	interval time.Duration
	probe    func() error
	onDead   func()

	mu      sync.Mutex
	missed  int
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

func newHeartbeat(interval time.Duration, probe func() error, onDead func()) *heartbeat {
	return &heartbeat{
		interval: interval,
		probe:    probe,
		onDead:   onDead,
	}
}

func (h *heartbeat) start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.stopCh = make(chan struct{})
	h.done = make(chan struct{})
	h.mu.Unlock()

	go h.loop()
}

func (h *heartbeat) stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.stopCh)
	done := h.done
	h.mu.Unlock()

	<-done
}

func (h *heartbeat) missedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.missed
}

func (h *heartbeat) loop() {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.tick()
		}
	}
}

func (h *heartbeat) tick() {
	err := h.probe()

	h.mu.Lock()
	if err != nil {
		h.missed++
	} else {
		h.missed = 0
	}
	dead := h.missed >= maxMissedProbes
	if dead {
		h.missed = 0
	}
	h.mu.Unlock()

	if dead && h.onDead != nil {
		h.onDead()
	}
}
