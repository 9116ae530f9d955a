package wire

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

// Angles travel on the wire as int16 in 0.1-degree units; angular
// rates as int16 in 0.1 deg/s units.
const angleScale = 0.1

// Attitude is a decoded gimbal attitude report (reply to
// CmdAcquireGimbalAttitude, CmdSetGimbalAngles, or an unsolicited
// attitude stream frame). Angles in degrees, rates in deg/s.
type Attitude struct {
	Yaw   float64
	Pitch float64
	Roll  float64

	YawRate   float64
	PitchRate float64
	RollRate  float64

	// HasRates is false for replies carrying only the three angles.
	HasRates bool
}

// ParseAttitude decodes an attitude payload. The device sends either
// six bytes (angles only, SetGimbalAngles reply) or twelve (angles
// plus rates).
func ParseAttitude(payload []byte) (Attitude, error) {
	if len(payload) != 6 && len(payload) != 12 {
		return Attitude{}, fmt.Errorf("attitude payload must be 6 or 12 bytes, got %d", len(payload))
	}

	att := Attitude{
		Yaw:   angle(payload[0:2]),
		Pitch: angle(payload[2:4]),
		Roll:  angle(payload[4:6]),
	}
	if len(payload) == 12 {
		att.YawRate = angle(payload[6:8])
		att.PitchRate = angle(payload[8:10])
		att.RollRate = angle(payload[10:12])
		att.HasRates = true
	}
	return att, nil
}

func angle(b []byte) float64 {
	return float64(int16(binary.LittleEndian.Uint16(b))) * angleScale
}

// BuildSetGimbalAngles encodes a CmdSetGimbalAngles payload from
// angles in degrees. Callers validate ranges against the camera
// profile first; this only quantizes.
func BuildSetGimbalAngles(yaw, pitch float64) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(int16(math.Round(yaw/angleScale))))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(int16(math.Round(pitch/angleScale))))
	return buf
}

// BuildGimbalSpeed encodes a CmdGimbalSpeed payload. Rates are
// signed percentages in -100..100.
func BuildGimbalSpeed(yaw, pitch int8) []byte {
	return []byte{byte(yaw), byte(pitch)}
}

// BuildDataStreamRequest encodes a CmdRequestDataStream payload.
func BuildDataStreamRequest(dataType StreamDataType, freqHz int) ([]byte, error) {
	code, err := StreamFrequencyCode(freqHz)
	if err != nil {
		return nil, err
	}
	return []byte{byte(dataType), code}, nil
}

// BuildAbsoluteZoom encodes a CmdAbsoluteZoom payload from a zoom
// level, split into integer and tenths parts.
func BuildAbsoluteZoom(level float64) []byte {
	intPart := uint8(level)
	fracPart := uint8(math.Round((level - float64(intPart)) * 10))
	if fracPart >= 10 {
		intPart++
		fracPart = 0
	}
	return []byte{intPart, fracPart}
}

// FirmwareVersion is the decoded reply to CmdAcquireFirmwareVersion.
type FirmwareVersion struct {
	CodeBoard string
	Gimbal    string
	Zoom      string
}

// ParseFirmwareVersion decodes a firmware version payload: three
// little-endian u32 version words (code board, gimbal, zoom), each
// rendered as "major.minor.patch" from its top three bytes.
func ParseFirmwareVersion(payload []byte) (FirmwareVersion, error) {
	if len(payload) < 12 {
		return FirmwareVersion{}, fmt.Errorf("firmware payload must be at least 12 bytes, got %d", len(payload))
	}
	return FirmwareVersion{
		CodeBoard: versionString(payload[0:4]),
		Gimbal:    versionString(payload[4:8]),
		Zoom:      versionString(payload[8:12]),
	}, nil
}

func versionString(b []byte) string {
	return fmt.Sprintf("%d.%d.%d", b[2], b[1], b[0])
}

// HardwareID is the decoded reply to CmdAcquireHardwareID.
type HardwareID struct {
	// ID is the raw identifier in hex.
	ID string

	// Model is derived from the identifier's first byte.
	Model CameraModel
}

// ParseHardwareID decodes a hardware ID payload.
func ParseHardwareID(payload []byte) (HardwareID, error) {
	if len(payload) == 0 {
		return HardwareID{}, fmt.Errorf("empty hardware ID payload")
	}
	model := CameraModel(payload[0])
	if !model.Known() {
		model = ModelUnknown
	}
	return HardwareID{
		ID:    hex.EncodeToString(payload),
		Model: model,
	}, nil
}

// GimbalInfo is the decoded reply to CmdAcquireGimbalInfo.
type GimbalInfo struct {
	HDROn     bool
	Recording RecordingState
	Motion    MotionMode
	Mount     MountDirection
}

// ParseGimbalInfo decodes a gimbal info payload:
// reserved(1) hdr(1) recording(1) motion(1) mount(1) videoOut(1).
func ParseGimbalInfo(payload []byte) (GimbalInfo, error) {
	if len(payload) < 5 {
		return GimbalInfo{}, fmt.Errorf("gimbal info payload must be at least 5 bytes, got %d", len(payload))
	}
	return GimbalInfo{
		HDROn:     payload[1] != 0,
		Recording: RecordingState(payload[2]),
		Motion:    MotionMode(payload[3]),
		Mount:     MountDirection(payload[4]),
	}, nil
}

// ParseZoomLevel decodes a manual zoom reply: current level times ten
// as little-endian u16.
func ParseZoomLevel(payload []byte) (float64, error) {
	if len(payload) < 2 {
		return 0, fmt.Errorf("zoom payload must be 2 bytes, got %d", len(payload))
	}
	return float64(binary.LittleEndian.Uint16(payload[0:2])) / 10, nil
}

// ParseZoomValue decodes a CmdCurrentZoomValue or CmdAbsoluteZoom
// reply carrying integer and tenths bytes.
func ParseZoomValue(payload []byte) (float64, error) {
	if len(payload) < 2 {
		return 0, fmt.Errorf("zoom value payload must be 2 bytes, got %d", len(payload))
	}
	return float64(payload[0]) + float64(payload[1])/10, nil
}

// ParseSuccess decodes the single status byte replies (center, focus,
// gimbal speed). Nonzero means the device accepted the command.
func ParseSuccess(payload []byte) (bool, error) {
	if len(payload) < 1 {
		return false, fmt.Errorf("empty status payload")
	}
	return payload[0] != 0, nil
}

// ParseFuncFeedback decodes a FunctionFeedback payload.
func ParseFuncFeedback(payload []byte) (FuncFeedback, error) {
	if len(payload) < 1 {
		return 0, fmt.Errorf("empty function feedback payload")
	}
	return FuncFeedback(payload[0]), nil
}
