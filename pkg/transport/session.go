package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Bmoradi93/siyi-sdk/pkg/log"
	"github.com/Bmoradi93/siyi-sdk/pkg/wire"
)

// Session states.
type SessionState int

const (
	// StateDisconnected indicates no open socket.
	StateDisconnected SessionState = iota

	// StateConnecting indicates socket setup in progress.
	StateConnecting

	// StateConnected indicates an open socket with a running
	// receive loop.
	StateConnected

	// StateClosing indicates close in progress.
	StateClosing
)

// String returns the session state name.
func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateClosing:
		return "CLOSING"
	default:
		return "UNKNOWN"
	}
}

// Session errors.
var (
	ErrNotConnected  = errors.New("session not connected")
	ErrAlreadyOpen   = errors.New("session already open")
	ErrSessionClosed = errors.New("session closed")
)

// readPollInterval bounds each blocking read so the receive loop can
// notice a close request.
const readPollInterval = 250 * time.Millisecond

// DefaultDeviceAddr is the factory address of SIYI cameras on the
// vehicle ethernet segment.
const DefaultDeviceAddr = "192.168.144.25:37260"

// maxDatagramSize is larger than any frame the device sends.
const maxDatagramSize = 2048

// SessionConfig configures a UDP session.
type SessionConfig struct {
	// DeviceAddr is the camera address (default: DefaultDeviceAddr).
	DeviceAddr string

	// WriteTimeout is the per-datagram send deadline (0 = none).
	WriteTimeout time.Duration

	// Logger receives operational log entries. Nil disables them.
	Logger *zap.Logger

	// Capture receives protocol capture events. Nil disables capture.
	Capture log.Logger

	// CaptureFrameBytes limits raw datagram bytes stored per capture
	// event. Zero captures headers only.
	CaptureFrameBytes int
}

// Handler receives session events. Calls are made from the receive
// loop; implementations must not block.
type Handler interface {
	// OnFrame is called for decoded frames that matched no pending
	// request: unsolicited telemetry and late acks.
	OnFrame(frame *wire.Frame)

	// OnStateChange is called when the session state changes.
	OnStateChange(oldState, newState SessionState)

	// OnError is called for non-fatal receive errors.
	OnError(err error)
}

// Stats are session counters, readable at any time.
type Stats struct {
	// FramesSent is the number of datagrams written.
	FramesSent uint64

	// FramesReceived is the number of valid frames decoded.
	FramesReceived uint64

	// Malformed is the number of inbound datagrams dropped by the
	// codec.
	Malformed uint64

	// Unmatched is the number of valid frames that matched no
	// pending request and were routed to the handler.
	Unmatched uint64
}

// Session is a UDP datagram session to one camera. Safe for
// concurrent use.
type Session struct {
	config  SessionConfig
	handler Handler

	id      string
	conn    *net.UDPConn
	pending *pendingTable

	state     atomic.Int32
	closeOnce sync.Once
	closeCh   chan struct{}
	closeDone chan struct{}

	framesSent     atomic.Uint64
	framesReceived atomic.Uint64
	malformed      atomic.Uint64
	unmatched      atomic.Uint64

	mu      sync.RWMutex
	writeMu sync.Mutex

	logger  *zap.Logger
	capture log.Logger
}

// NewSession creates a session (not yet open).
func NewSession(config SessionConfig, handler Handler) *Session {
	if config.DeviceAddr == "" {
		config.DeviceAddr = DefaultDeviceAddr
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	capture := config.Capture
	if capture == nil {
		capture = log.NoopLogger{}
	}

	s := &Session{
		config:    config,
		handler:   handler,
		id:        uuid.NewString(),
		pending:   newPendingTable(),
		closeCh:   make(chan struct{}),
		closeDone: make(chan struct{}),
		logger:    logger,
		capture:   capture,
	}
	s.state.Store(int32(StateDisconnected))

	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Stats returns a copy of the session counters.
func (s *Session) Stats() Stats {
	return Stats{
		FramesSent:     s.framesSent.Load(),
		FramesReceived: s.framesReceived.Load(),
		Malformed:      s.malformed.Load(),
		Unmatched:      s.unmatched.Load(),
	}
}

// Open binds an ephemeral local port, connects the socket to the
// device address, and starts the receive loop.
func (s *Session) Open(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
		return ErrAlreadyOpen
	}
	s.notifyStateChange(StateDisconnected, StateConnecting)

	remote, err := net.ResolveUDPAddr("udp", s.config.DeviceAddr)
	if err != nil {
		s.state.Store(int32(StateDisconnected))
		s.notifyStateChange(StateConnecting, StateDisconnected)
		return fmt.Errorf("invalid device address %q: %w", s.config.DeviceAddr, err)
	}

	conn, err := net.DialUDP("udp", nil, remote)
	if err != nil {
		s.state.Store(int32(StateDisconnected))
		s.notifyStateChange(StateConnecting, StateDisconnected)
		return fmt.Errorf("dial failed: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	// A concurrent Close may have run while the socket was being set
	// up; it saw no conn, so clean up here.
	select {
	case <-s.closeCh:
		conn.Close()
		s.state.Store(int32(StateDisconnected))
		return ErrSessionClosed
	default:
	}

	s.logger.Info("session open",
		zap.String("session", s.id),
		zap.String("device", remote.String()),
		zap.String("local", conn.LocalAddr().String()),
	)
	go s.receiveLoop(ctx)

	s.state.Store(int32(StateConnected))
	s.notifyStateChange(StateConnecting, StateConnected)
	s.logState(StateConnecting, StateConnected)

	return nil
}

// Send encodes and writes one frame. Tracked requests must be
// registered with Track before Send so the ack cannot race the
// registration.
func (s *Session) Send(frame *wire.Frame) error {
	if s.State() != StateConnected {
		return ErrNotConnected
	}

	data, err := frame.Encode()
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}

	if s.config.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		defer conn.SetWriteDeadline(time.Time{})
	}

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	s.framesSent.Add(1)
	s.captureFrame(log.DirectionOut, frame, data)

	return nil
}

// Track registers a sequence number before its request is sent. The
// returned channel yields the ack frame, or is closed if the session
// shuts down first.
func (s *Session) Track(seq uint16) (<-chan *wire.Frame, error) {
	return s.pending.track(seq)
}

// Untrack abandons a tracked sequence number after a timeout.
func (s *Session) Untrack(seq uint16) {
	s.pending.untrack(seq)
}

// Close stops the receive loop, fails all in-flight requests, and
// closes the socket. Idempotent.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		currentState := s.State()
		if currentState == StateDisconnected {
			return
		}

		s.state.Store(int32(StateClosing))
		s.notifyStateChange(currentState, StateClosing)
		s.logState(currentState, StateClosing)

		close(s.closeCh)

		s.mu.Lock()
		conn := s.conn
		if conn != nil {
			conn.Close()
		}
		s.mu.Unlock()

		// The receive loop only runs once a socket exists; waiting for
		// it with no conn would block forever against an Open that
		// failed mid-setup.
		if conn != nil {
			<-s.closeDone
		}

		s.pending.close()

		s.state.Store(int32(StateDisconnected))
		s.notifyStateChange(StateClosing, StateDisconnected)
		s.logState(StateClosing, StateDisconnected)

		s.logger.Info("session closed",
			zap.String("session", s.id),
			zap.Uint64("sent", s.framesSent.Load()),
			zap.Uint64("received", s.framesReceived.Load()),
			zap.Uint64("malformed", s.malformed.Load()),
		)
	})

	return nil
}

// receiveLoop reads datagrams until the session closes. It is the
// only reader of the socket and the only writer into the pending
// table's delivery side.
func (s *Session) receiveLoop(ctx context.Context) {
	defer close(s.closeDone)

	buf := make([]byte, maxDatagramSize)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closeCh:
			return
		default:
		}

		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()
		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(readPollInterval))
		n, err := conn.Read(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if s.State() == StateClosing || ctx.Err() != nil {
				return
			}
			s.notifyError(fmt.Errorf("receive failed: %w", err))
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		s.handleDatagram(data)
	}
}

// handleDatagram decodes one inbound datagram and routes the frame.
func (s *Session) handleDatagram(data []byte) {
	frame, err := wire.Decode(data)
	if err != nil {
		s.malformed.Add(1)
		s.captureError(fmt.Sprintf("dropped malformed datagram: %v", err))
		s.logger.Debug("dropped malformed datagram",
			zap.String("session", s.id),
			zap.Int("size", len(data)),
			zap.Error(err),
		)
		return
	}

	s.framesReceived.Add(1)
	s.captureFrame(log.DirectionIn, frame, data)

	// Acks complete their pending request; everything else, and any
	// ack that arrives after its request gave up, goes to the
	// handler as unsolicited traffic.
	if frame.Ctrl == wire.CtrlAck && s.pending.complete(frame) {
		return
	}

	s.unmatched.Add(1)
	if s.handler != nil {
		s.handler.OnFrame(frame)
	}
}

func (s *Session) notifyStateChange(oldState, newState SessionState) {
	if s.handler != nil {
		s.handler.OnStateChange(oldState, newState)
	}
}

func (s *Session) notifyError(err error) {
	s.captureError(err.Error())
	s.logger.Warn("session error", zap.String("session", s.id), zap.Error(err))
	if s.handler != nil {
		s.handler.OnError(err)
	}
}

func (s *Session) captureFrame(dir log.Direction, frame *wire.Frame, raw []byte) {
	frameData := raw
	truncated := false
	if len(frameData) > s.config.CaptureFrameBytes {
		frameData = frameData[:s.config.CaptureFrameBytes]
		truncated = s.config.CaptureFrameBytes > 0
	}

	event := log.Event{
		Timestamp:  time.Now(),
		SessionID:  s.id,
		Direction:  dir,
		Layer:      log.LayerWire,
		Category:   log.CategoryMessage,
		RemoteAddr: s.config.DeviceAddr,
		Command: &log.CommandEvent{
			Seq:         frame.Seq,
			Cmd:         uint8(frame.Cmd),
			Name:        frame.Cmd.String(),
			PayloadSize: len(frame.Payload),
		},
	}
	if s.config.CaptureFrameBytes > 0 {
		event.Frame = &log.FrameEvent{
			Size:      len(raw),
			Data:      frameData,
			Truncated: truncated,
		}
	}
	s.capture.Log(event)
}

func (s *Session) captureError(msg string) {
	s.capture.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  s.id,
		Direction:  log.DirectionIn,
		Layer:      log.LayerTransport,
		Category:   log.CategoryError,
		RemoteAddr: s.config.DeviceAddr,
		Error:      &log.ErrorEvent{Message: msg},
	})
}

func (s *Session) logState(oldState, newState SessionState) {
	s.capture.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Direction: log.DirectionOut,
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			From: oldState.String(),
			To:   newState.String(),
		},
	})
}
