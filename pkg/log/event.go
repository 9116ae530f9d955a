package log

import "time"

// Event represents a protocol capture event from any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the transport session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates datagram flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the device address (IP:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"7,keyasint,omitempty"`  // Transport layer
	Command     *CommandEvent     `cbor:"8,keyasint,omitempty"`  // Wire layer (decoded)
	StateChange *StateChangeEvent `cbor:"9,keyasint,omitempty"`  // Session state
	Error       *ErrorEvent       `cbor:"10,keyasint,omitempty"` // Errors at any layer
}

// FrameEvent captures a raw datagram at the transport layer.
type FrameEvent struct {
	// Size is the full datagram size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data holds the datagram bytes, possibly truncated.
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated is true if Data was cut at the capture limit.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// CommandEvent captures a decoded frame at the wire layer.
type CommandEvent struct {
	// Seq is the frame's sequence number.
	Seq uint16 `cbor:"1,keyasint"`

	// Cmd is the command identifier.
	Cmd uint8 `cbor:"2,keyasint"`

	// Name is the human-readable command name.
	Name string `cbor:"3,keyasint,omitempty"`

	// PayloadSize is the payload length in bytes.
	PayloadSize int `cbor:"4,keyasint"`
}

// StateChangeEvent captures a session state transition.
type StateChangeEvent struct {
	From string `cbor:"1,keyasint"`
	To   string `cbor:"2,keyasint"`
}

// ErrorEvent captures an error at any layer.
type ErrorEvent struct {
	Message string `cbor:"1,keyasint"`
}

// Direction indicates the direction of datagram flow.
type Direction uint8

const (
	// DirectionIn indicates a datagram from the device.
	DirectionIn Direction = 0
	// DirectionOut indicates a datagram to the device.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the UDP datagram layer (raw bytes).
	LayerTransport Layer = 0
	// LayerWire is the frame codec layer (decoded commands).
	LayerWire Layer = 1
	// LayerSession is the session/dispatcher layer.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a protocol frame.
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
