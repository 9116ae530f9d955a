package wire

import (
	"math"
	"testing"
)

func TestParseAttitude(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    Attitude
		wantErr bool
	}{
		{
			name: "angles with rates",
			payload: []byte{
				0xC2, 0x01, // yaw 45.0
				0xD4, 0xFE, // pitch -30.0
				0x05, 0x00, // roll 0.5
				0x64, 0x00, // yaw rate 10.0
				0x9C, 0xFF, // pitch rate -10.0
				0x00, 0x00,
			},
			want: Attitude{
				Yaw: 45.0, Pitch: -30.0, Roll: 0.5,
				YawRate: 10.0, PitchRate: -10.0, RollRate: 0,
				HasRates: true,
			},
		},
		{
			name:    "angles only",
			payload: []byte{0x00, 0x00, 0x2C, 0x01, 0x00, 0x00},
			want:    Attitude{Pitch: 30.0},
		},
		{
			name:    "wrong length",
			payload: []byte{0x01, 0x02, 0x03},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAttitude(tt.payload)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAttitude failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseAttitude = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSetGimbalAnglesQuantization(t *testing.T) {
	tests := []struct {
		yaw, pitch float64
	}{
		{0, 0},
		{45.0, -30.0},
		{-135.0, 25.0},
		{10.5, -20.5},
		{0.1, -0.1},
	}

	for _, tt := range tests {
		payload := BuildSetGimbalAngles(tt.yaw, tt.pitch)
		att, err := ParseAttitude(append(payload, 0x00, 0x00))
		if err != nil {
			t.Fatalf("ParseAttitude failed: %v", err)
		}
		if math.Abs(att.Yaw-tt.yaw) > 0.05 || math.Abs(att.Pitch-tt.pitch) > 0.05 {
			t.Errorf("angles %v/%v round-tripped as %v/%v", tt.yaw, tt.pitch, att.Yaw, att.Pitch)
		}
	}
}

func TestParseFirmwareVersion(t *testing.T) {
	payload := []byte{
		0x01, 0x02, 0x03, 0x00, // code board 3.2.1
		0x05, 0x06, 0x07, 0x00, // gimbal 7.6.5
		0x09, 0x00, 0x01, 0x00, // zoom 1.0.9
	}
	fw, err := ParseFirmwareVersion(payload)
	if err != nil {
		t.Fatalf("ParseFirmwareVersion failed: %v", err)
	}
	if fw.CodeBoard != "3.2.1" || fw.Gimbal != "7.6.5" || fw.Zoom != "1.0.9" {
		t.Errorf("unexpected versions: %+v", fw)
	}

	if _, err := ParseFirmwareVersion([]byte{0x01}); err == nil {
		t.Error("expected error for short payload")
	}
}

func TestParseHardwareID(t *testing.T) {
	tests := []struct {
		name      string
		payload   []byte
		wantModel CameraModel
	}{
		{"ZR10", []byte{0x6B, 0x01, 0x02}, ModelZR10},
		{"A8 mini", []byte{0x73, 0xAA}, ModelA8Mini},
		{"ZT30", []byte{0x7A}, ModelZT30},
		{"unrecognized", []byte{0x01}, ModelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hw, err := ParseHardwareID(tt.payload)
			if err != nil {
				t.Fatalf("ParseHardwareID failed: %v", err)
			}
			if hw.Model != tt.wantModel {
				t.Errorf("Model = %v, want %v", hw.Model, tt.wantModel)
			}
		})
	}

	if _, err := ParseHardwareID(nil); err == nil {
		t.Error("expected error for empty payload")
	}
}

func TestParseGimbalInfo(t *testing.T) {
	info, err := ParseGimbalInfo([]byte{0x00, 0x01, 0x01, 0x02, 0x00, 0x00})
	if err != nil {
		t.Fatalf("ParseGimbalInfo failed: %v", err)
	}
	if !info.HDROn {
		t.Error("expected HDR on")
	}
	if info.Recording != RecordingOn {
		t.Errorf("Recording = %v, want ON", info.Recording)
	}
	if info.Motion != MotionFPV {
		t.Errorf("Motion = %v, want FPV", info.Motion)
	}
	if info.Mount != MountNormal {
		t.Errorf("Mount = %v, want NORMAL", info.Mount)
	}
}

func TestZoomCodecs(t *testing.T) {
	level, err := ParseZoomLevel([]byte{0x2D, 0x00}) // 45 -> 4.5x
	if err != nil || level != 4.5 {
		t.Errorf("ParseZoomLevel = %v, %v; want 4.5", level, err)
	}

	for _, want := range []float64{1.0, 4.5, 10.0, 29.9} {
		got, err := ParseZoomValue(BuildAbsoluteZoom(want))
		if err != nil {
			t.Fatalf("ParseZoomValue failed: %v", err)
		}
		if math.Abs(got-want) > 0.001 {
			t.Errorf("zoom %v round-tripped as %v", want, got)
		}
	}
}

func TestBuildDataStreamRequest(t *testing.T) {
	payload, err := BuildDataStreamRequest(StreamAttitude, 50)
	if err != nil {
		t.Fatalf("BuildDataStreamRequest failed: %v", err)
	}
	if payload[0] != byte(StreamAttitude) || payload[1] != 6 {
		t.Errorf("unexpected payload %x", payload)
	}

	if _, err := BuildDataStreamRequest(StreamAttitude, 3); err == nil {
		t.Error("expected error for unsupported frequency")
	}
}

func TestFuncFeedbackAndSuccess(t *testing.T) {
	fb, err := ParseFuncFeedback([]byte{byte(FeedbackPhotoFail)})
	if err != nil || fb != FeedbackPhotoFail {
		t.Errorf("ParseFuncFeedback = %v, %v", fb, err)
	}

	ok, err := ParseSuccess([]byte{0x01})
	if err != nil || !ok {
		t.Errorf("ParseSuccess = %v, %v", ok, err)
	}
	if _, err := ParseSuccess(nil); err == nil {
		t.Error("expected error for empty payload")
	}
}
