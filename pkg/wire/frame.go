package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Frame layout constants.
const (
	// STX is the two-byte start marker, transmitted as 0x55 0x66.
	STX0 = 0x55
	STX1 = 0x66

	// HeaderSize is the fixed prefix before the payload:
	// STX (2) + CTRL (1) + DataLen (2) + Seq (2) + CmdID (1).
	HeaderSize = 8

	// ChecksumSize is the trailing CRC16.
	ChecksumSize = 2

	// MinFrameSize is the smallest valid frame (empty payload).
	MinFrameSize = HeaderSize + ChecksumSize

	// MaxPayloadSize bounds the payload length field. SIYI frames are
	// small; this guards against hostile length values on receive.
	MaxPayloadSize = 512
)

// Control byte values.
const (
	// CtrlNeedAck marks a request the device acknowledges with a
	// reply frame carrying the same sequence number.
	CtrlNeedAck = 0x01

	// CtrlAck marks a reply or unsolicited push from the device.
	CtrlAck = 0x02
)

// Framing errors. All decode failures wrap ErrMalformed so callers can
// classify them with a single errors.Is check.
var (
	// ErrMalformed indicates a datagram that failed framing validation.
	ErrMalformed = errors.New("malformed frame")

	// ErrPayloadSchema indicates an encode payload that does not match
	// the command's fixed schema length.
	ErrPayloadSchema = errors.New("payload does not match command schema")
)

// Frame is one complete protocol message carried in a single UDP
// datagram. A Frame is constructed per send or receive event and
// discarded after use.
type Frame struct {
	Ctrl    byte
	Seq     uint16
	Cmd     Command
	Payload []byte
}

// Encode builds the wire representation of the frame, computing and
// appending the checksum. Request frames are checked against the
// command's fixed payload schema; reply payloads vary by firmware and
// are not length-checked.
func (f *Frame) Encode() ([]byte, error) {
	if f.Ctrl == CtrlNeedAck {
		if want, known := f.Cmd.RequestPayloadSize(); known && len(f.Payload) != want {
			return nil, fmt.Errorf("%w: cmd %s wants %d bytes, got %d",
				ErrPayloadSchema, f.Cmd, want, len(f.Payload))
		}
	}
	if len(f.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: payload %d exceeds %d bytes",
			ErrPayloadSchema, len(f.Payload), MaxPayloadSize)
	}

	buf := make([]byte, HeaderSize+len(f.Payload)+ChecksumSize)
	buf[0] = STX0
	buf[1] = STX1
	buf[2] = f.Ctrl
	binary.LittleEndian.PutUint16(buf[3:5], uint16(len(f.Payload)))
	binary.LittleEndian.PutUint16(buf[5:7], f.Seq)
	buf[7] = byte(f.Cmd)
	copy(buf[HeaderSize:], f.Payload)

	crc := Checksum(buf[:HeaderSize+len(f.Payload)])
	binary.LittleEndian.PutUint16(buf[HeaderSize+len(f.Payload):], crc)

	return buf, nil
}

// NewRequest builds a request frame that expects a device reply.
func NewRequest(seq uint16, cmd Command, payload []byte) *Frame {
	return &Frame{Ctrl: CtrlNeedAck, Seq: seq, Cmd: cmd, Payload: payload}
}

// Decode validates and parses one datagram. It checks the start
// marker, the declared payload length against the actual buffer size,
// and the trailing checksum over all preceding bytes; the parsed
// Frame is returned only if every check passes. The returned payload
// aliases data and must not be retained past the datagram's lifetime.
func Decode(data []byte) (*Frame, error) {
	if len(data) < MinFrameSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d",
			ErrMalformed, len(data), MinFrameSize)
	}
	if data[0] != STX0 || data[1] != STX1 {
		return nil, fmt.Errorf("%w: bad start marker 0x%02x%02x",
			ErrMalformed, data[0], data[1])
	}

	dataLen := int(binary.LittleEndian.Uint16(data[3:5]))
	if dataLen > MaxPayloadSize {
		return nil, fmt.Errorf("%w: declared payload %d exceeds %d",
			ErrMalformed, dataLen, MaxPayloadSize)
	}
	if len(data) != HeaderSize+dataLen+ChecksumSize {
		return nil, fmt.Errorf("%w: declared payload %d but datagram is %d bytes",
			ErrMalformed, dataLen, len(data))
	}

	body := data[:HeaderSize+dataLen]
	want := binary.LittleEndian.Uint16(data[HeaderSize+dataLen:])
	if got := Checksum(body); got != want {
		return nil, fmt.Errorf("%w: checksum 0x%04x, frame carries 0x%04x",
			ErrMalformed, got, want)
	}

	return &Frame{
		Ctrl:    data[2],
		Seq:     binary.LittleEndian.Uint16(data[5:7]),
		Cmd:     Command(data[7]),
		Payload: data[HeaderSize : HeaderSize+dataLen],
	}, nil
}

// String returns a debug representation of the frame.
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{ctrl=0x%02x, seq=%d, cmd=%s, payload=%d bytes}",
		f.Ctrl, f.Seq, f.Cmd, len(f.Payload))
}
