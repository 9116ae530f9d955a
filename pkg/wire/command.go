package wire

import "fmt"

// Command identifies a protocol operation. The set is closed; the
// device ignores identifiers it does not implement.
type Command uint8

const (
	// CmdAcquireFirmwareVersion requests the camera, gimbal, and zoom
	// firmware versions.
	CmdAcquireFirmwareVersion Command = 0x01

	// CmdAcquireHardwareID requests the hardware identifier string.
	// Its first two hex digits encode the camera model.
	CmdAcquireHardwareID Command = 0x02

	// CmdAutoFocus triggers one-shot automatic focus.
	CmdAutoFocus Command = 0x04

	// CmdManualZoom starts, stops, or reverses continuous zoom.
	CmdManualZoom Command = 0x05

	// CmdManualFocus drives the focus motor far, near, or holds it.
	CmdManualFocus Command = 0x06

	// CmdGimbalSpeed sets yaw and pitch rotation rates.
	CmdGimbalSpeed Command = 0x07

	// CmdCenter returns the gimbal to its neutral position.
	CmdCenter Command = 0x08

	// CmdAcquireGimbalInfo requests recording state, mount direction,
	// and motion mode.
	CmdAcquireGimbalInfo Command = 0x0A

	// CmdFunctionFeedback carries the outcome of a function command
	// (photo taken, recording toggled, HDR switched). The device also
	// pushes it unsolicited.
	CmdFunctionFeedback Command = 0x0B

	// CmdPhotoVideo selects a camera function: take photo, toggle
	// recording, or switch motion mode. The device does not echo this
	// command; confirmation arrives as FunctionFeedback.
	CmdPhotoVideo Command = 0x0C

	// CmdAcquireGimbalAttitude requests the current attitude and
	// angular rates.
	CmdAcquireGimbalAttitude Command = 0x0D

	// CmdSetGimbalAngles commands absolute yaw and pitch angles.
	// The reply carries the resulting attitude.
	CmdSetGimbalAngles Command = 0x0E

	// CmdAbsoluteZoom commands a zoom level as integer and fractional
	// parts.
	CmdAbsoluteZoom Command = 0x0F

	// CmdCurrentZoomValue requests the current zoom level.
	CmdCurrentZoomValue Command = 0x18

	// CmdRequestDataStream asks the device to push telemetry at a
	// fixed frequency.
	CmdRequestDataStream Command = 0x25
)

// requestSchema maps each command to its fixed request payload length.
type requestSchema struct {
	payloadSize int
	ackless     bool
}

var requestSchemas = map[Command]requestSchema{
	CmdAcquireFirmwareVersion: {payloadSize: 0},
	CmdAcquireHardwareID:      {payloadSize: 0},
	CmdAutoFocus:              {payloadSize: 1},
	CmdManualZoom:             {payloadSize: 1},
	CmdManualFocus:            {payloadSize: 1},
	CmdGimbalSpeed:            {payloadSize: 2},
	CmdCenter:                 {payloadSize: 1},
	CmdAcquireGimbalInfo:      {payloadSize: 0},
	CmdFunctionFeedback:       {payloadSize: 0},
	CmdPhotoVideo:             {payloadSize: 1, ackless: true},
	CmdAcquireGimbalAttitude:  {payloadSize: 0},
	CmdSetGimbalAngles:        {payloadSize: 4},
	CmdAbsoluteZoom:           {payloadSize: 2},
	CmdCurrentZoomValue:       {payloadSize: 0},
	CmdRequestDataStream:      {payloadSize: 2},
}

// RequestPayloadSize returns the fixed request payload length for the
// command, and whether the command is part of the known set. Unknown
// commands report known=false and are not length-checked on encode.
func (c Command) RequestPayloadSize() (size int, known bool) {
	s, ok := requestSchemas[c]
	return s.payloadSize, ok
}

// Known reports whether the command identifier belongs to the
// implemented set.
func (c Command) Known() bool {
	_, ok := requestSchemas[c]
	return ok
}

// Ackless reports whether the device echoes no reply frame for this
// command. Ackless commands are confirmed out of band via
// FunctionFeedback.
func (c Command) Ackless() bool {
	return requestSchemas[c].ackless
}

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdAcquireFirmwareVersion:
		return "AcquireFirmwareVersion"
	case CmdAcquireHardwareID:
		return "AcquireHardwareID"
	case CmdAutoFocus:
		return "AutoFocus"
	case CmdManualZoom:
		return "ManualZoom"
	case CmdManualFocus:
		return "ManualFocus"
	case CmdGimbalSpeed:
		return "GimbalSpeed"
	case CmdCenter:
		return "Center"
	case CmdAcquireGimbalInfo:
		return "AcquireGimbalInfo"
	case CmdFunctionFeedback:
		return "FunctionFeedback"
	case CmdPhotoVideo:
		return "PhotoVideo"
	case CmdAcquireGimbalAttitude:
		return "AcquireGimbalAttitude"
	case CmdSetGimbalAngles:
		return "SetGimbalAngles"
	case CmdAbsoluteZoom:
		return "AbsoluteZoom"
	case CmdCurrentZoomValue:
		return "CurrentZoomValue"
	case CmdRequestDataStream:
		return "RequestDataStream"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", uint8(c))
	}
}
