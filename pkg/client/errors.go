package client

import (
	"errors"

	"github.com/Bmoradi93/siyi-sdk/pkg/transport"
)

// Client errors. Wrapped errors stay matchable with errors.Is.
var (
	// ErrTimeout indicates a request received no ack within the
	// deadline, across all retry attempts.
	ErrTimeout = errors.New("request timed out")

	// ErrNoAck indicates a camera function produced no feedback.
	ErrNoAck = errors.New("no function feedback received")

	// ErrOutOfRange indicates a commanded value outside the active
	// camera profile's limits.
	ErrOutOfRange = errors.New("value out of range")

	// ErrSessionClosed indicates the session shut down while the
	// request was in flight.
	ErrSessionClosed = transport.ErrSessionClosed

	// ErrRejected indicates the device acknowledged the command but
	// reported failure.
	ErrRejected = errors.New("command rejected by device")

	// ErrUnknown indicates a frame carrying a command identifier
	// outside the implemented set.
	ErrUnknown = errors.New("unrecognized command identifier")

	// ErrUnsupported indicates the device firmware predates the
	// requested feature.
	ErrUnsupported = errors.New("not supported by device firmware")
)
