package wire

import "fmt"

// CameraModel identifies the camera family, derived from the first
// byte of the hardware ID.
type CameraModel uint8

const (
	ModelUnknown CameraModel = 0x00
	ModelZR10    CameraModel = 0x6B
	ModelA8Mini  CameraModel = 0x73
	ModelA2Mini  CameraModel = 0x75
	ModelZR30    CameraModel = 0x78
	ModelZT6     CameraModel = 0x83
	ModelZT30    CameraModel = 0x7A
)

// Known reports whether the model byte maps to a supported camera.
func (m CameraModel) Known() bool {
	switch m {
	case ModelZR10, ModelA8Mini, ModelA2Mini, ModelZR30, ModelZT6, ModelZT30:
		return true
	default:
		return false
	}
}

// String returns the marketing name of the camera model.
func (m CameraModel) String() string {
	switch m {
	case ModelZR10:
		return "ZR10"
	case ModelA8Mini:
		return "A8 mini"
	case ModelA2Mini:
		return "A2 mini"
	case ModelZR30:
		return "ZR30"
	case ModelZT6:
		return "ZT6"
	case ModelZT30:
		return "ZT30"
	default:
		return fmt.Sprintf("unknown(0x%02X)", uint8(m))
	}
}

// MotionMode is the gimbal stabilization mode.
type MotionMode uint8

const (
	// MotionLock keeps the camera pointing fixed in space.
	MotionLock MotionMode = 0

	// MotionFollow follows the vehicle heading in yaw.
	MotionFollow MotionMode = 1

	// MotionFPV locks all axes to the vehicle frame.
	MotionFPV MotionMode = 2
)

// String returns the motion mode name.
func (m MotionMode) String() string {
	switch m {
	case MotionLock:
		return "LOCK"
	case MotionFollow:
		return "FOLLOW"
	case MotionFPV:
		return "FPV"
	default:
		return "UNKNOWN"
	}
}

// RecordingState is the video recording status.
type RecordingState uint8

const (
	RecordingOff RecordingState = 0
	RecordingOn  RecordingState = 1

	// RecordingNoCard indicates an empty TF card slot.
	RecordingNoCard RecordingState = 2

	// RecordingDataLoss indicates a recording failure with data loss.
	RecordingDataLoss RecordingState = 3
)

// String returns the recording state name.
func (s RecordingState) String() string {
	switch s {
	case RecordingOff:
		return "OFF"
	case RecordingOn:
		return "ON"
	case RecordingNoCard:
		return "NO_CARD"
	case RecordingDataLoss:
		return "DATA_LOSS"
	default:
		return "UNKNOWN"
	}
}

// MountDirection is the gimbal mounting orientation.
type MountDirection uint8

const (
	MountNormal     MountDirection = 0
	MountUpsideDown MountDirection = 1
)

// String returns the mount direction name.
func (d MountDirection) String() string {
	switch d {
	case MountNormal:
		return "NORMAL"
	case MountUpsideDown:
		return "UPSIDE_DOWN"
	default:
		return "UNKNOWN"
	}
}

// FuncFeedback is the outcome code carried by FunctionFeedback frames.
type FuncFeedback uint8

const (
	FeedbackSuccess    FuncFeedback = 0
	FeedbackPhotoFail  FuncFeedback = 1
	FeedbackHDROn      FuncFeedback = 2
	FeedbackHDROff     FuncFeedback = 3
	FeedbackRecordFail FuncFeedback = 4
)

// String returns the feedback code name.
func (f FuncFeedback) String() string {
	switch f {
	case FeedbackSuccess:
		return "SUCCESS"
	case FeedbackPhotoFail:
		return "PHOTO_FAIL"
	case FeedbackHDROn:
		return "HDR_ON"
	case FeedbackHDROff:
		return "HDR_OFF"
	case FeedbackRecordFail:
		return "RECORD_FAIL"
	default:
		return "UNKNOWN"
	}
}

// CameraFunc selects the function invoked by CmdPhotoVideo.
type CameraFunc uint8

const (
	FuncTakePhoto    CameraFunc = 0
	FuncToggleRecord CameraFunc = 2
	FuncModeLock     CameraFunc = 3
	FuncModeFollow   CameraFunc = 4
	FuncModeFPV      CameraFunc = 5
)

// StreamDataType selects which telemetry the device pushes after a
// RequestDataStream command.
type StreamDataType uint8

const (
	StreamAttitude StreamDataType = 1
	StreamLaser    StreamDataType = 2
)

// streamFreqCodes maps push frequencies in Hz to their wire codes.
var streamFreqCodes = map[int]uint8{
	0: 0, 2: 1, 4: 2, 5: 3, 10: 4, 20: 5, 50: 6, 100: 7,
}

// StreamFrequencyCode returns the wire code for a push frequency in
// Hz. Zero disables the stream. Frequencies outside the device's
// fixed set are rejected.
func StreamFrequencyCode(hz int) (uint8, error) {
	code, ok := streamFreqCodes[hz]
	if !ok {
		return 0, fmt.Errorf("unsupported stream frequency %d Hz", hz)
	}
	return code, nil
}
