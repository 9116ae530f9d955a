// Package client provides the high-level command API for SIYI gimbal
// cameras.
//
// A Client owns a transport session, correlates requests with acks,
// applies the per-model camera profile to commanded values, and keeps
// a state store fed from every inbound frame. Optional background
// loops (heartbeat, telemetry pollers, reconnect) run until Close.
package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Bmoradi93/siyi-sdk/pkg/config"
	"github.com/Bmoradi93/siyi-sdk/pkg/log"
	"github.com/Bmoradi93/siyi-sdk/pkg/profile"
	"github.com/Bmoradi93/siyi-sdk/pkg/state"
	"github.com/Bmoradi93/siyi-sdk/pkg/transport"
	"github.com/Bmoradi93/siyi-sdk/pkg/version"
	"github.com/Bmoradi93/siyi-sdk/pkg/wire"
)

// Config configures a Client.
type Config struct {
	// DeviceAddr is the camera address (default:
	// transport.DefaultDeviceAddr).
	DeviceAddr string

	// Timeout is the per-attempt ack deadline (default: 5s).
	Timeout time.Duration

	// MaxRetries is the number of resends after the first attempt
	// times out (default: 3).
	MaxRetries int

	// RetryInterval is the pause before each resend (default: 100ms).
	RetryInterval time.Duration

	// RetryPolicy paces resends with a fixed or exponentially growing
	// interval (default: RetryFixed).
	RetryPolicy RetryPolicy

	// HeartbeatInterval is the liveness probe period. Zero disables
	// the heartbeat.
	HeartbeatInterval time.Duration

	// AttitudeInterval is the attitude poll period. Zero disables
	// the poller.
	AttitudeInterval time.Duration

	// InfoInterval is the gimbal info poll period. Zero disables the
	// poller.
	InfoInterval time.Duration

	// AutoReconnect replaces a dead session with a fresh one using
	// exponential backoff.
	AutoReconnect bool

	// Profiles overrides the built-in camera profiles. Nil uses the
	// built-ins.
	Profiles map[wire.CameraModel]profile.Profile

	// Logger receives operational log entries. Nil disables them.
	Logger *zap.Logger

	// Capture receives protocol capture events. Nil disables capture.
	Capture log.Logger
}

// FromConfig maps a loaded file configuration onto a client Config.
func FromConfig(cfg config.Config) Config {
	return Config{
		DeviceAddr:        cfg.Camera.Addr(),
		Timeout:           cfg.Camera.Timeout,
		MaxRetries:        cfg.Camera.MaxRetries,
		RetryInterval:     cfg.Camera.RetryInterval,
		RetryPolicy:       RetryPolicy(cfg.Camera.RetryPolicy),
		HeartbeatInterval: cfg.Camera.HeartbeatInterval,
		AttitudeInterval:  cfg.Camera.AttitudeInterval,
		InfoInterval:      cfg.Camera.InfoInterval,
	}
}

// Client is a connection to one camera. Safe for concurrent use.
type Client struct {
	config Config
	logger *zap.Logger

	sessionMu sync.RWMutex
	session   *transport.Session

	store *state.Store

	// seq is the request sequence counter, wrapped to uint16.
	seq atomic.Uint32

	profileMu sync.RWMutex
	profile   profile.Profile

	// gimbalFirmware gates features that later firmware added.
	firmwareMu     sync.RWMutex
	gimbalFirmware version.Firmware
	firmwareKnown  bool

	unknownFrames atomic.Uint64

	// feedback fan-out for ackless function commands.
	feedbackMu      sync.Mutex
	feedbackWaiters []chan wire.FuncFeedback

	heartbeat *heartbeat
	pollers   []*poller

	closeOnce sync.Once
	closeCh   chan struct{}
	closed    atomic.Bool

	reconnecting atomic.Bool
	wg           sync.WaitGroup
}

// New creates a client (not yet connected).
func New(cfg Config) *Client {
	if cfg.DeviceAddr == "" {
		cfg.DeviceAddr = transport.DefaultDeviceAddr
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = defaultRetryInterval
	}
	if cfg.RetryPolicy == "" {
		cfg.RetryPolicy = RetryFixed
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config:  cfg,
		logger:  logger,
		store:   state.NewStore(),
		profile: profile.Default(),
		closeCh: make(chan struct{}),
	}
}

// Connect opens the session, probes the device identity to select a
// camera profile, and starts the configured background loops.
func (c *Client) Connect(ctx context.Context) error {
	session := c.newSession()
	if err := session.Open(ctx); err != nil {
		return err
	}

	c.sessionMu.Lock()
	c.session = session
	c.sessionMu.Unlock()

	// Identity probes select the camera profile. A camera that does
	// not answer yet still gets a working client with the permissive
	// default profile.
	if hw, err := c.HardwareID(ctx); err == nil {
		c.setProfileFor(hw.Model)
	} else {
		c.logger.Warn("hardware ID probe failed, using generic profile", zap.Error(err))
	}
	if _, err := c.FirmwareVersion(ctx); err != nil {
		c.logger.Debug("firmware version probe failed", zap.Error(err))
	}

	c.startBackground()

	return nil
}

// Close stops all background loops and shuts the session down.
// In-flight requests fail with ErrSessionClosed. Idempotent.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.closeCh)

		// Closing the session first fails any in-flight probe or poll,
		// so the loops below stop without waiting out a request timeout.
		if session := c.currentSession(); session != nil {
			session.Close()
		}

		if c.heartbeat != nil {
			c.heartbeat.stop()
		}
		for _, p := range c.pollers {
			p.stop()
		}

		c.wg.Wait()
		c.failFeedbackWaiters()
	})
	return nil
}

// State returns a snapshot of the last known device state.
func (c *Client) State() state.Snapshot {
	return c.store.Snapshot()
}

// IsStale reports whether no valid frame arrived within threshold.
func (c *Client) IsStale(threshold time.Duration) bool {
	return c.store.IsStale(threshold)
}

// Stats returns the current session's transport counters.
func (c *Client) Stats() transport.Stats {
	if session := c.currentSession(); session != nil {
		return session.Stats()
	}
	return transport.Stats{}
}

// Profile returns the active camera profile.
func (c *Client) Profile() profile.Profile {
	c.profileMu.RLock()
	defer c.profileMu.RUnlock()
	return c.profile
}

// GimbalFirmware returns the parsed gimbal firmware release, and
// whether a firmware version reply has been seen yet.
func (c *Client) GimbalFirmware() (version.Firmware, bool) {
	c.firmwareMu.RLock()
	defer c.firmwareMu.RUnlock()
	return c.gimbalFirmware, c.firmwareKnown
}

// UnknownFrames is the number of inbound frames dropped because their
// command identifier is outside the implemented set.
func (c *Client) UnknownFrames() uint64 {
	return c.unknownFrames.Load()
}

func (c *Client) setProfileFor(model wire.CameraModel) {
	p := profile.ForModel(model)
	if c.config.Profiles != nil {
		if override, ok := c.config.Profiles[model]; ok {
			p = override
		}
	}

	c.profileMu.Lock()
	c.profile = p
	c.profileMu.Unlock()

	c.logger.Info("camera profile selected",
		zap.String("model", model.String()),
		zap.String("profile", p.Name),
	)
}

func (c *Client) newSession() *transport.Session {
	return transport.NewSession(transport.SessionConfig{
		DeviceAddr:        c.config.DeviceAddr,
		Logger:            c.logger,
		Capture:           c.config.Capture,
		CaptureFrameBytes: 64,
	}, &sessionHandler{client: c})
}

func (c *Client) currentSession() *transport.Session {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	return c.session
}

// startBackground launches the heartbeat and telemetry pollers per
// the configuration.
func (c *Client) startBackground() {
	if c.config.HeartbeatInterval > 0 {
		c.heartbeat = newHeartbeat(c.config.HeartbeatInterval, c.probe, c.onSessionDead)
		c.heartbeat.start()
	}
	if c.config.AttitudeInterval > 0 {
		p := newPoller("attitude", c.config.AttitudeInterval, func(ctx context.Context) error {
			_, err := c.Attitude(ctx)
			return err
		}, c.logger)
		c.pollers = append(c.pollers, p)
		p.start()
	}
	if c.config.InfoInterval > 0 {
		p := newPoller("gimbal_info", c.config.InfoInterval, func(ctx context.Context) error {
			_, err := c.GimbalInfo(ctx)
			return err
		}, c.logger)
		c.pollers = append(c.pollers, p)
		p.start()
	}
}

// probe is the heartbeat liveness check: a firmware version request
// whose ack proves the device is reachable.
func (c *Client) probe() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
	defer cancel()
	_, err := c.FirmwareVersion(ctx)
	return err
}

// onSessionDead handles a heartbeat declaring the device unreachable.
func (c *Client) onSessionDead() {
	c.logger.Warn("device unreachable", zap.String("device", c.config.DeviceAddr))

	if !c.config.AutoReconnect || c.closed.Load() {
		return
	}
	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}

	c.wg.Add(1)
	go c.reconnectLoop()
}

// reconnectLoop replaces the dead session with a fresh one, backing
// off exponentially between attempts.
func (c *Client) reconnectLoop() {
	defer c.wg.Done()
	defer c.reconnecting.Store(false)

	old := c.currentSession()
	if old != nil {
		old.Close()
	}

	b := newBackoff()
	for {
		delay := b.next()
		c.logger.Info("reconnecting",
			zap.Duration("delay", delay),
			zap.Int("attempt", b.attemptCount()),
		)

		select {
		case <-c.closeCh:
			return
		case <-time.After(delay):
		}

		session := c.newSession()
		if err := session.Open(context.Background()); err != nil {
			c.logger.Warn("reconnect failed", zap.Error(err))
			continue
		}

		c.sessionMu.Lock()
		c.session = session
		c.sessionMu.Unlock()

		if err := c.probe(); err != nil {
			c.logger.Warn("reconnect probe failed", zap.Error(err))
			session.Close()
			continue
		}

		c.logger.Info("reconnected", zap.String("session", session.ID()))
		return
	}
}

// sessionHandler routes transport events into the client. A separate
// type keeps the Handler methods off the Client's public API.
type sessionHandler struct {
	client *Client
}

func (h *sessionHandler) OnFrame(frame *wire.Frame) {
	h.client.absorb(frame)
}

func (h *sessionHandler) OnStateChange(oldState, newState transport.SessionState) {
	h.client.logger.Debug("session state change",
		zap.Stringer("from", oldState),
		zap.Stringer("to", newState),
	)
}

func (h *sessionHandler) OnError(err error) {
	h.client.logger.Warn("transport error", zap.Error(err))
}

// absorb feeds a decoded frame into the state store. Called both for
// matched acks and for unsolicited telemetry, so polling and pushed
// streams keep the same state fresh.
func (c *Client) absorb(frame *wire.Frame) {
	switch frame.Cmd {
	case wire.CmdAcquireGimbalAttitude, wire.CmdSetGimbalAngles:
		if att, err := wire.ParseAttitude(frame.Payload); err == nil {
			c.store.SetAttitude(att)
		}
	case wire.CmdAcquireGimbalInfo:
		if info, err := wire.ParseGimbalInfo(frame.Payload); err == nil {
			c.store.SetGimbalInfo(info)
		}
	case wire.CmdAcquireFirmwareVersion:
		if fw, err := wire.ParseFirmwareVersion(frame.Payload); err == nil {
			c.store.SetFirmware(fw)
			c.noteFirmware(fw)
		}
	case wire.CmdAcquireHardwareID:
		if hw, err := wire.ParseHardwareID(frame.Payload); err == nil {
			c.store.SetHardware(hw)
		}
	case wire.CmdManualZoom:
		if level, err := wire.ParseZoomLevel(frame.Payload); err == nil {
			c.store.SetZoomLevel(level)
		}
	case wire.CmdAbsoluteZoom, wire.CmdCurrentZoomValue:
		if level, err := wire.ParseZoomValue(frame.Payload); err == nil {
			c.store.SetZoomLevel(level)
		}
	case wire.CmdFunctionFeedback:
		if fb, err := wire.ParseFuncFeedback(frame.Payload); err == nil {
			c.store.SetFeedback(fb)
			c.deliverFeedback(fb)
		}
	default:
		if !frame.Cmd.Known() {
			c.unknownFrames.Add(1)
			c.logger.Warn("dropped frame with unrecognized command",
				zap.Uint8("cmd", uint8(frame.Cmd)),
				zap.Uint16("seq", frame.Seq),
				zap.Error(ErrUnknown),
			)
			return
		}
		c.store.Touch()
	}
}

// noteFirmware records the gimbal firmware release for feature gating.
func (c *Client) noteFirmware(fw wire.FirmwareVersion) {
	parsed, err := version.Parse(fw.Gimbal)
	if err != nil {
		c.logger.Debug("unparseable gimbal firmware version",
			zap.String("version", fw.Gimbal),
			zap.Error(err),
		)
		return
	}

	c.firmwareMu.Lock()
	c.gimbalFirmware = parsed
	c.firmwareKnown = true
	c.firmwareMu.Unlock()
}

// awaitFeedback registers a one-shot waiter for the next
// FunctionFeedback frame. The cancel func removes the waiter if it
// gave up before any feedback arrived.
func (c *Client) awaitFeedback() (<-chan wire.FuncFeedback, func()) {
	ch := make(chan wire.FuncFeedback, 1)
	c.feedbackMu.Lock()
	c.feedbackWaiters = append(c.feedbackWaiters, ch)
	c.feedbackMu.Unlock()

	cancel := func() {
		c.feedbackMu.Lock()
		defer c.feedbackMu.Unlock()
		for i, w := range c.feedbackWaiters {
			if w == ch {
				c.feedbackWaiters = append(c.feedbackWaiters[:i], c.feedbackWaiters[i+1:]...)
				return
			}
		}
	}
	return ch, cancel
}

func (c *Client) deliverFeedback(fb wire.FuncFeedback) {
	c.feedbackMu.Lock()
	waiters := c.feedbackWaiters
	c.feedbackWaiters = nil
	c.feedbackMu.Unlock()

	for _, ch := range waiters {
		ch <- fb
	}
}

func (c *Client) failFeedbackWaiters() {
	c.feedbackMu.Lock()
	waiters := c.feedbackWaiters
	c.feedbackWaiters = nil
	c.feedbackMu.Unlock()

	for _, ch := range waiters {
		close(ch)
	}
}

// nextSeq allocates a request sequence number, wrapping at 65536.
func (c *Client) nextSeq() uint16 {
	return uint16(c.seq.Add(1))
}

// do sends one request and waits for its ack, retrying with a fresh
// sequence number after each timeout. Resends are paced by the
// configured retry interval and policy.
func (c *Client) do(ctx context.Context, cmd wire.Command, payload []byte) (*wire.Frame, error) {
	if c.closed.Load() {
		return nil, ErrSessionClosed
	}

	session := c.currentSession()
	if session == nil {
		return nil, ErrSessionClosed
	}

	attempts := c.config.MaxRetries + 1
	pace := newRetryBackoff(c.config.RetryInterval, c.config.Timeout, c.config.RetryPolicy)
	for attempt := 0; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// A fresh sequence number per attempt keeps a late ack to a
		// timed-out attempt from completing the retry.
		seq := c.nextSeq()
		ch, err := session.Track(seq)
		if err != nil {
			return nil, err
		}

		if err := session.Send(wire.NewRequest(seq, cmd, payload)); err != nil {
			session.Untrack(seq)
			if c.closed.Load() {
				return nil, ErrSessionClosed
			}
			return nil, err
		}

		timer := time.NewTimer(c.config.Timeout)
		select {
		case <-ctx.Done():
			timer.Stop()
			session.Untrack(seq)
			return nil, ctx.Err()
		case ack, ok := <-ch:
			timer.Stop()
			if !ok {
				return nil, ErrSessionClosed
			}
			if !ack.Cmd.Known() {
				c.unknownFrames.Add(1)
				return nil, fmt.Errorf("ack carries command 0x%02X: %w", uint8(ack.Cmd), ErrUnknown)
			}
			c.absorb(ack)
			return ack, nil
		case <-timer.C:
			session.Untrack(seq)
			c.logger.Debug("request attempt timed out",
				zap.Stringer("cmd", cmd),
				zap.Uint16("seq", seq),
				zap.Int("attempt", attempt+1),
			)
		}

		if attempt < attempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-c.closeCh:
				return nil, ErrSessionClosed
			case <-time.After(pace.next()):
			}
		}
	}

	return nil, fmt.Errorf("%s after %d attempts: %w", cmd, attempts, ErrTimeout)
}

// doAckless sends a command the device never echoes. Confirmation
// arrives out of band as a FunctionFeedback frame; its absence within
// the timeout is ErrNoAck. Feedback frames carry no correlation id,
// so every concurrent ackless caller observes the next feedback
// regardless of which command produced it; serialize photo and record
// calls when the distinction matters.
func (c *Client) doAckless(ctx context.Context, cmd wire.Command, payload []byte) (wire.FuncFeedback, error) {
	if c.closed.Load() {
		return 0, ErrSessionClosed
	}

	session := c.currentSession()
	if session == nil {
		return 0, ErrSessionClosed
	}

	feedback, giveUp := c.awaitFeedback()
	defer giveUp()

	if err := session.Send(wire.NewRequest(c.nextSeq(), cmd, payload)); err != nil {
		return 0, err
	}

	timer := time.NewTimer(c.config.Timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case fb, ok := <-feedback:
		if !ok {
			return 0, ErrSessionClosed
		}
		return fb, nil
	case <-timer.C:
		return 0, fmt.Errorf("%s: %w", cmd, ErrNoAck)
	}
}
