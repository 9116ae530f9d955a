package client

import (
	"context"
	"fmt"

	"github.com/Bmoradi93/siyi-sdk/pkg/version"
	"github.com/Bmoradi93/siyi-sdk/pkg/wire"
)

// Manual zoom and focus direction bytes.
const (
	dirPositive = 0x01
	dirStop     = 0x00
	dirNegative = 0xFF
)

// streamMinFirmware is the first gimbal firmware release that answers
// CmdRequestDataStream; earlier releases silently ignore it.
var streamMinFirmware = version.Firmware{Major: 0, Minor: 2, Patch: 0}

// FirmwareVersion queries the camera, gimbal, and zoom firmware
// versions.
func (c *Client) FirmwareVersion(ctx context.Context) (wire.FirmwareVersion, error) {
	ack, err := c.do(ctx, wire.CmdAcquireFirmwareVersion, nil)
	if err != nil {
		return wire.FirmwareVersion{}, err
	}
	return wire.ParseFirmwareVersion(ack.Payload)
}

// HardwareID queries the hardware identifier and derives the camera
// model.
func (c *Client) HardwareID(ctx context.Context) (wire.HardwareID, error) {
	ack, err := c.do(ctx, wire.CmdAcquireHardwareID, nil)
	if err != nil {
		return wire.HardwareID{}, err
	}
	return wire.ParseHardwareID(ack.Payload)
}

// Attitude queries the current gimbal attitude and angular rates.
func (c *Client) Attitude(ctx context.Context) (wire.Attitude, error) {
	ack, err := c.do(ctx, wire.CmdAcquireGimbalAttitude, nil)
	if err != nil {
		return wire.Attitude{}, err
	}
	return wire.ParseAttitude(ack.Payload)
}

// GimbalInfo queries recording state, motion mode, and mount
// direction.
func (c *Client) GimbalInfo(ctx context.Context) (wire.GimbalInfo, error) {
	ack, err := c.do(ctx, wire.CmdAcquireGimbalInfo, nil)
	if err != nil {
		return wire.GimbalInfo{}, err
	}
	return wire.ParseGimbalInfo(ack.Payload)
}

// FunctionFeedback queries the outcome of the last camera function.
func (c *Client) FunctionFeedback(ctx context.Context) (wire.FuncFeedback, error) {
	ack, err := c.do(ctx, wire.CmdFunctionFeedback, nil)
	if err != nil {
		return 0, err
	}
	return wire.ParseFuncFeedback(ack.Payload)
}

// Center returns the gimbal to its neutral position.
func (c *Client) Center(ctx context.Context) error {
	ack, err := c.do(ctx, wire.CmdCenter, []byte{0x01})
	if err != nil {
		return err
	}
	return statusError(ack.Payload)
}

// SetGimbalSpeed commands yaw and pitch rotation rates as signed
// percentages in -100..100.
func (c *Client) SetGimbalSpeed(ctx context.Context, yaw, pitch int) error {
	if yaw < -100 || yaw > 100 {
		return fmt.Errorf("%w: yaw speed %d outside [-100, 100]", ErrOutOfRange, yaw)
	}
	if pitch < -100 || pitch > 100 {
		return fmt.Errorf("%w: pitch speed %d outside [-100, 100]", ErrOutOfRange, pitch)
	}

	ack, err := c.do(ctx, wire.CmdGimbalSpeed, wire.BuildGimbalSpeed(int8(yaw), int8(pitch)))
	if err != nil {
		return err
	}
	return statusError(ack.Payload)
}

// StopRotation halts gimbal motion on both axes.
func (c *Client) StopRotation(ctx context.Context) error {
	return c.SetGimbalSpeed(ctx, 0, 0)
}

// SetGimbalAngles commands absolute yaw and pitch in degrees,
// validated against the active camera profile. The returned attitude
// is the device's resulting orientation.
func (c *Client) SetGimbalAngles(ctx context.Context, yaw, pitch float64) (wire.Attitude, error) {
	if err := c.Profile().ValidateYawPitch(yaw, pitch); err != nil {
		return wire.Attitude{}, fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}

	ack, err := c.do(ctx, wire.CmdSetGimbalAngles, wire.BuildSetGimbalAngles(yaw, pitch))
	if err != nil {
		return wire.Attitude{}, err
	}
	return wire.ParseAttitude(ack.Payload)
}

// AutoFocus triggers one-shot automatic focus.
func (c *Client) AutoFocus(ctx context.Context) error {
	ack, err := c.do(ctx, wire.CmdAutoFocus, []byte{0x01})
	if err != nil {
		return err
	}
	return statusError(ack.Payload)
}

// FocusFar drives the focus motor toward far field until StopFocus.
func (c *Client) FocusFar(ctx context.Context) error {
	return c.manualFocus(ctx, dirPositive)
}

// FocusNear drives the focus motor toward near field until StopFocus.
func (c *Client) FocusNear(ctx context.Context) error {
	return c.manualFocus(ctx, dirNegative)
}

// StopFocus halts manual focus motion.
func (c *Client) StopFocus(ctx context.Context) error {
	return c.manualFocus(ctx, dirStop)
}

func (c *Client) manualFocus(ctx context.Context, dir byte) error {
	ack, err := c.do(ctx, wire.CmdManualFocus, []byte{dir})
	if err != nil {
		return err
	}
	return statusError(ack.Payload)
}

// ZoomIn starts continuous zoom in until StopZoom. The returned level
// is the device's zoom at the time of the ack.
func (c *Client) ZoomIn(ctx context.Context) (float64, error) {
	return c.manualZoom(ctx, dirPositive)
}

// ZoomOut starts continuous zoom out until StopZoom.
func (c *Client) ZoomOut(ctx context.Context) (float64, error) {
	return c.manualZoom(ctx, dirNegative)
}

// StopZoom halts continuous zoom.
func (c *Client) StopZoom(ctx context.Context) (float64, error) {
	return c.manualZoom(ctx, dirStop)
}

func (c *Client) manualZoom(ctx context.Context, dir byte) (float64, error) {
	ack, err := c.do(ctx, wire.CmdManualZoom, []byte{dir})
	if err != nil {
		return 0, err
	}
	return wire.ParseZoomLevel(ack.Payload)
}

// ZoomLevel queries the current zoom level.
func (c *Client) ZoomLevel(ctx context.Context) (float64, error) {
	ack, err := c.do(ctx, wire.CmdCurrentZoomValue, nil)
	if err != nil {
		return 0, err
	}
	return wire.ParseZoomValue(ack.Payload)
}

// SetAbsoluteZoom commands a zoom level, validated against the active
// camera profile.
func (c *Client) SetAbsoluteZoom(ctx context.Context, level float64) error {
	if err := c.Profile().ValidateZoom(level); err != nil {
		return fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}

	ack, err := c.do(ctx, wire.CmdAbsoluteZoom, wire.BuildAbsoluteZoom(level))
	if err != nil {
		return err
	}

	// Some firmware acks with a status byte, some with the resulting
	// zoom value.
	if len(ack.Payload) == 1 {
		return statusError(ack.Payload)
	}
	return nil
}

// TakePhoto triggers a still capture. The result arrives as function
// feedback rather than an ack.
func (c *Client) TakePhoto(ctx context.Context) error {
	fb, err := c.doAckless(ctx, wire.CmdPhotoVideo, []byte{byte(wire.FuncTakePhoto)})
	if err != nil {
		return err
	}
	if fb == wire.FeedbackPhotoFail {
		return fmt.Errorf("%w: photo failed, check TF card", ErrRejected)
	}
	return nil
}

// ToggleRecording starts or stops video recording.
func (c *Client) ToggleRecording(ctx context.Context) error {
	fb, err := c.doAckless(ctx, wire.CmdPhotoVideo, []byte{byte(wire.FuncToggleRecord)})
	if err != nil {
		return err
	}
	if fb == wire.FeedbackRecordFail {
		return fmt.Errorf("%w: recording failed, check TF card", ErrRejected)
	}
	return nil
}

// SetMotionMode switches the gimbal stabilization mode.
func (c *Client) SetMotionMode(ctx context.Context, mode wire.MotionMode) error {
	var fn wire.CameraFunc
	switch mode {
	case wire.MotionLock:
		fn = wire.FuncModeLock
	case wire.MotionFollow:
		fn = wire.FuncModeFollow
	case wire.MotionFPV:
		fn = wire.FuncModeFPV
	default:
		return fmt.Errorf("%w: motion mode %d", ErrOutOfRange, mode)
	}

	_, err := c.doAckless(ctx, wire.CmdPhotoVideo, []byte{byte(fn)})
	return err
}

// RequestDataStream asks the device to push telemetry at the given
// frequency in Hz. Zero stops the stream. Pushed frames land in the
// state store without polling. Fails with ErrUnsupported when the
// gimbal firmware predates the data stream command.
func (c *Client) RequestDataStream(ctx context.Context, dataType wire.StreamDataType, freqHz int) error {
	if fw, ok := c.GimbalFirmware(); ok && !fw.AtLeast(streamMinFirmware) {
		return fmt.Errorf("data stream needs gimbal firmware %s or later, device reports %s: %w",
			streamMinFirmware, fw, ErrUnsupported)
	}

	payload, err := wire.BuildDataStreamRequest(dataType, freqHz)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}

	_, err = c.do(ctx, wire.CmdRequestDataStream, payload)
	return err
}

// statusError maps a single status byte ack to an error.
func statusError(payload []byte) error {
	ok, err := wire.ParseSuccess(payload)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRejected
	}
	return nil
}
