package siyi_test

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/Bmoradi93/siyi-sdk/pkg/client"
	"github.com/Bmoradi93/siyi-sdk/pkg/log"
	"github.com/Bmoradi93/siyi-sdk/pkg/wire"
)

// startCamera runs a minimal A8 mini lookalike on a loopback UDP
// socket.
func startCamera(t *testing.T) string {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to bind camera socket: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 2048)
		for {
			n, remote, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			frame, err := wire.Decode(buf[:n])
			if err != nil {
				continue
			}

			var payload []byte
			switch frame.Cmd {
			case wire.CmdAcquireFirmwareVersion:
				payload = []byte{0x00, 0x02, 0x01, 0x00, 0x03, 0x05, 0x02, 0x00, 0x00, 0x01, 0x01, 0x00}
			case wire.CmdAcquireHardwareID:
				payload = []byte{0x73, 0xAA, 0xBB, 0xCC}
			case wire.CmdAcquireGimbalAttitude:
				payload = []byte{0x2C, 0x01, 0x38, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
			case wire.CmdAcquireGimbalInfo:
				payload = []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
			case wire.CmdCenter:
				payload = []byte{0x01}
			default:
				continue
			}

			reply := &wire.Frame{Ctrl: wire.CtrlAck, Seq: frame.Seq, Cmd: frame.Cmd, Payload: payload}
			data, err := reply.Encode()
			if err != nil {
				continue
			}
			conn.WriteToUDP(data, remote)
		}
	}()

	t.Cleanup(func() {
		conn.Close()
		<-done
	})
	return conn.LocalAddr().String()
}

// TestE2E_FullSession drives the whole stack: wire codec, UDP
// transport, dispatcher, state store, profile selection, and
// protocol capture.
func TestE2E_FullSession(t *testing.T) {
	addr := startCamera(t)
	capturePath := filepath.Join(t.TempDir(), "session.slog")

	capture, err := log.NewFileLogger(capturePath)
	if err != nil {
		t.Fatalf("failed to create capture: %v", err)
	}

	c := client.New(client.Config{
		DeviceAddr: addr,
		Timeout:    2 * time.Second,
		MaxRetries: 1,
		Capture:    capture,
	})

	ctx := context.Background()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	// Identity probes during connect selected the A8 mini profile.
	if got := c.Profile().Name; got != "A8 mini" {
		t.Errorf("profile: got %q, want A8 mini", got)
	}

	att, err := c.Attitude(ctx)
	if err != nil {
		t.Fatalf("attitude failed: %v", err)
	}
	if att.Yaw != 30.0 || att.Pitch != -20.0 {
		t.Errorf("attitude: %+v", att)
	}

	if err := c.Center(ctx); err != nil {
		t.Errorf("center failed: %v", err)
	}

	// Angle limits come from the selected profile, not the generic
	// defaults: 200 degrees is valid generically but not on an A8.
	if _, err := c.SetGimbalAngles(ctx, 200, 0); err == nil {
		t.Error("A8 mini accepted yaw beyond its limit")
	}

	snap := c.State()
	if snap.Hardware.Model != wire.ModelA8Mini {
		t.Errorf("stored model: %v", snap.Hardware.Model)
	}
	if snap.Firmware.Gimbal != "2.5.3" {
		t.Errorf("stored gimbal firmware: %q", snap.Firmware.Gimbal)
	}
	if c.IsStale(5 * time.Second) {
		t.Error("state should be fresh right after traffic")
	}

	if err := c.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := capture.Close(); err != nil {
		t.Fatalf("capture close failed: %v", err)
	}

	// The capture replays the whole conversation.
	reader, err := log.OpenCapture(capturePath, log.Filter{Layer: log.LayerWire, Category: log.CategoryAny})
	if err != nil {
		t.Fatalf("failed to open capture: %v", err)
	}
	defer reader.Close()

	events, err := reader.All()
	if err != nil {
		t.Fatalf("capture replay failed: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("capture recorded no wire events")
	}

	sawCenter := false
	for _, event := range events {
		if event.Command != nil && event.Command.Name == "Center" {
			sawCenter = true
		}
	}
	if !sawCenter {
		t.Error("capture missing the Center exchange")
	}
}
