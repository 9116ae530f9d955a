package client

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// poller runs one telemetry query on a fixed interval. Errors are
// logged and swallowed: a missed poll just means a slightly staler
// state store, and the heartbeat owns liveness decisions.
type poller struct {
	name     string
	interval time.Duration
	poll     func(ctx context.Context) error
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

func newPoller(name string, interval time.Duration, poll func(ctx context.Context) error, logger *zap.Logger) *poller {
	return &poller{
		name:     name,
		interval: interval,
		poll:     poll,
		logger:   logger,
	}
}

func (p *poller) start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.done = make(chan struct{})
	p.mu.Unlock()

	go p.loop()
}

func (p *poller) stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	done := p.done
	p.mu.Unlock()

	<-done
}

func (p *poller) loop() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-p.stopCh
		cancel()
	}()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			if err := p.poll(ctx); err != nil && ctx.Err() == nil {
				p.logger.Debug("poll failed",
					zap.String("poller", p.name),
					zap.Error(err),
				)
			}
		}
	}
}
