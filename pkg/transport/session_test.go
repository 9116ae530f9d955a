package transport

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/Bmoradi93/siyi-sdk/pkg/wire"
)

// fakeDevice is a loopback UDP endpoint standing in for a camera. It
// answers each request through respond, or stays silent when respond
// returns nil.
type fakeDevice struct {
	t       *testing.T
	conn    *net.UDPConn
	respond func(frame *wire.Frame) *wire.Frame
	done    chan struct{}
}

func newFakeDevice(t *testing.T, respond func(frame *wire.Frame) *wire.Frame) *fakeDevice {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to bind fake device: %v", err)
	}

	d := &fakeDevice{t: t, conn: conn, respond: respond, done: make(chan struct{})}
	go d.serve()
	t.Cleanup(d.close)
	return d
}

func (d *fakeDevice) addr() string {
	return d.conn.LocalAddr().String()
}

func (d *fakeDevice) serve() {
	defer close(d.done)
	buf := make([]byte, 2048)
	for {
		n, remote, err := d.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		frame, err := wire.Decode(buf[:n])
		if err != nil {
			continue
		}
		reply := d.respond(frame)
		if reply == nil {
			continue
		}
		data, err := reply.Encode()
		if err != nil {
			d.t.Errorf("fake device encode failed: %v", err)
			continue
		}
		d.conn.WriteToUDP(data, remote)
	}
}

func (d *fakeDevice) close() {
	d.conn.Close()
	<-d.done
}

// echoAck replies to any request with an ack carrying the given
// payload under the same sequence and command.
func echoAck(payload []byte) func(frame *wire.Frame) *wire.Frame {
	return func(frame *wire.Frame) *wire.Frame {
		return &wire.Frame{
			Ctrl:    wire.CtrlAck,
			Seq:     frame.Seq,
			Cmd:     frame.Cmd,
			Payload: payload,
		}
	}
}

// collectingHandler records routed frames and errors.
type collectingHandler struct {
	mu     sync.Mutex
	frames []*wire.Frame
	errs   []error
}

func (h *collectingHandler) OnFrame(frame *wire.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames = append(h.frames, frame)
}

func (h *collectingHandler) OnStateChange(oldState, newState SessionState) {}

func (h *collectingHandler) OnError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *collectingHandler) frameCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.frames)
}

func openTestSession(t *testing.T, device *fakeDevice, handler Handler) *Session {
	t.Helper()

	session := NewSession(SessionConfig{DeviceAddr: device.addr()}, handler)
	if err := session.Open(context.Background()); err != nil {
		t.Fatalf("failed to open session: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func waitForFrame(t *testing.T, ch <-chan *wire.Frame) *wire.Frame {
	t.Helper()
	select {
	case frame, ok := <-ch:
		if !ok {
			t.Fatal("pending channel closed before delivery")
		}
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ack")
		return nil
	}
}

func TestRequestAckRoundTrip(t *testing.T) {
	device := newFakeDevice(t, echoAck([]byte{0x01}))
	session := openTestSession(t, device, &collectingHandler{})

	ch, err := session.Track(7)
	if err != nil {
		t.Fatalf("track failed: %v", err)
	}
	if err := session.Send(wire.NewRequest(7, wire.CmdCenter, []byte{0x01})); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	ack := waitForFrame(t, ch)
	if ack.Seq != 7 || ack.Cmd != wire.CmdCenter {
		t.Errorf("wrong ack routed: seq=%d cmd=%v", ack.Seq, ack.Cmd)
	}
	if ack.Ctrl != wire.CtrlAck {
		t.Errorf("expected ack ctrl byte, got %#x", ack.Ctrl)
	}
}

func TestConcurrentRequestsRouteBySeq(t *testing.T) {
	// Reply payload carries the request sequence so each waiter can
	// verify it got its own ack.
	device := newFakeDevice(t, func(frame *wire.Frame) *wire.Frame {
		return &wire.Frame{
			Ctrl:    wire.CtrlAck,
			Seq:     frame.Seq,
			Cmd:     frame.Cmd,
			Payload: []byte{byte(frame.Seq)},
		}
	})
	session := openTestSession(t, device, &collectingHandler{})

	var wg sync.WaitGroup
	for seq := uint16(1); seq <= 20; seq++ {
		wg.Add(1)
		go func(seq uint16) {
			defer wg.Done()

			ch, err := session.Track(seq)
			if err != nil {
				t.Errorf("track %d failed: %v", seq, err)
				return
			}
			if err := session.Send(wire.NewRequest(seq, wire.CmdAutoFocus, []byte{0x01})); err != nil {
				t.Errorf("send %d failed: %v", seq, err)
				return
			}

			ack := waitForFrame(t, ch)
			if ack.Seq != seq || ack.Payload[0] != byte(seq) {
				t.Errorf("seq %d received foreign ack: seq=%d payload=%v", seq, ack.Seq, ack.Payload)
			}
		}(seq)
	}
	wg.Wait()
}

func TestUnmatchedFramesGoToHandler(t *testing.T) {
	handler := &collectingHandler{}
	device := newFakeDevice(t, echoAck(nil))
	session := openTestSession(t, device, handler)

	// No Track call, so the ack finds no pending entry.
	if err := session.Send(wire.NewRequest(3, wire.CmdAcquireGimbalAttitude, nil)); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for handler.frameCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("unmatched ack never reached handler")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if session.Stats().Unmatched == 0 {
		t.Error("unmatched counter not incremented")
	}
}

func TestMalformedDatagramsDroppedAndCounted(t *testing.T) {
	handler := &collectingHandler{}
	device := newFakeDevice(t, echoAck([]byte{0x01}))
	session := openTestSession(t, device, handler)

	// Corrupt bytes straight at the session's local port.
	local := session.conn.LocalAddr().(*net.UDPAddr)
	garbage := []byte{0x55, 0x66, 0xFF, 0x10, 0x00, 0x01, 0x00, 0x01, 0xDE, 0xAD}
	if _, err := device.conn.WriteToUDP(garbage, local); err != nil {
		t.Fatalf("failed to inject garbage: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for session.Stats().Malformed == 0 {
		select {
		case <-deadline:
			t.Fatal("malformed datagram never counted")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Session still works afterwards.
	ch, err := session.Track(9)
	if err != nil {
		t.Fatalf("track failed: %v", err)
	}
	if err := session.Send(wire.NewRequest(9, wire.CmdCenter, []byte{0x01})); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	waitForFrame(t, ch)

	if handler.frameCount() != 0 {
		t.Errorf("malformed datagram leaked to handler: %d frames", handler.frameCount())
	}
}

func TestDuplicateAckRouting(t *testing.T) {
	handler := &collectingHandler{}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to bind fake device: %v", err)
	}
	defer conn.Close()

	session := NewSession(SessionConfig{DeviceAddr: conn.LocalAddr().String()}, handler)
	if err := session.Open(context.Background()); err != nil {
		t.Fatalf("failed to open session: %v", err)
	}
	defer session.Close()

	ch, err := session.Track(5)
	if err != nil {
		t.Fatalf("track failed: %v", err)
	}
	if err := session.Send(wire.NewRequest(5, wire.CmdCenter, []byte{0x01})); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	buf := make([]byte, 2048)
	_, remote, err := conn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("fake device read failed: %v", err)
	}

	ack := &wire.Frame{Ctrl: wire.CtrlAck, Seq: 5, Cmd: wire.CmdCenter, Payload: []byte{0x01}}
	data, err := ack.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	conn.WriteToUDP(data, remote)
	conn.WriteToUDP(data, remote)

	first := waitForFrame(t, ch)
	if first.Seq != 5 {
		t.Errorf("wrong ack: %v", first)
	}

	// The duplicate finds no pending entry and goes to the handler.
	deadline := time.After(2 * time.Second)
	for handler.frameCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("duplicate ack never routed to handler")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestCloseFailsPendingRequests(t *testing.T) {
	// Device never replies.
	device := newFakeDevice(t, func(*wire.Frame) *wire.Frame { return nil })
	session := openTestSession(t, device, &collectingHandler{})

	ch, err := session.Track(11)
	if err != nil {
		t.Fatalf("track failed: %v", err)
	}
	if err := session.Send(wire.NewRequest(11, wire.CmdCenter, []byte{0x01})); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	go session.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel close, got a frame")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pending channel not failed on close")
	}

	if _, err := session.Track(12); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("track after close: got %v, want ErrSessionClosed", err)
	}
	if err := session.Send(wire.NewRequest(12, wire.CmdCenter, []byte{0x01})); !errors.Is(err, ErrNotConnected) {
		t.Errorf("send after close: got %v, want ErrNotConnected", err)
	}
}

func TestTrackDuplicateSeq(t *testing.T) {
	device := newFakeDevice(t, func(*wire.Frame) *wire.Frame { return nil })
	session := openTestSession(t, device, &collectingHandler{})

	if _, err := session.Track(1); err != nil {
		t.Fatalf("first track failed: %v", err)
	}
	if _, err := session.Track(1); !errors.Is(err, ErrDuplicateSeq) {
		t.Errorf("duplicate track: got %v, want ErrDuplicateSeq", err)
	}

	session.Untrack(1)
	if _, err := session.Track(1); err != nil {
		t.Errorf("track after untrack failed: %v", err)
	}
}

func TestCloseDoesNotHangWithoutReceiveLoop(t *testing.T) {
	session := NewSession(SessionConfig{DeviceAddr: "127.0.0.1:1"}, &collectingHandler{})

	// Simulate a close arriving while Open is still setting up the
	// socket: the state is Connecting but no conn exists and no
	// receive loop ever started.
	session.state.Store(int32(StateConnecting))

	done := make(chan struct{})
	go func() {
		session.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("close hung waiting for a receive loop that never started")
	}
	if session.State() != StateDisconnected {
		t.Errorf("state after close: %v", session.State())
	}
}

func TestCloseIdempotent(t *testing.T) {
	device := newFakeDevice(t, func(*wire.Frame) *wire.Frame { return nil })
	session := openTestSession(t, device, &collectingHandler{})

	if err := session.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
	if session.State() != StateDisconnected {
		t.Errorf("state after close: %v", session.State())
	}
}
