// Package profile describes per-model camera capabilities and limits.
//
// The dispatcher validates commanded angles and zoom levels against
// the active profile before anything reaches the wire. Built-in
// profiles cover the known camera families; a YAML file can override
// or extend them for new hardware.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Bmoradi93/siyi-sdk/pkg/wire"
)

// Profile holds the controllable ranges of one camera model.
type Profile struct {
	// Name is the model name used in override files.
	Name string `yaml:"name"`

	// YawMin and YawMax bound absolute yaw commands in degrees.
	YawMin float64 `yaml:"yaw_min"`
	YawMax float64 `yaml:"yaw_max"`

	// PitchMin and PitchMax bound absolute pitch commands in degrees.
	PitchMin float64 `yaml:"pitch_min"`
	PitchMax float64 `yaml:"pitch_max"`

	// ZoomMin and ZoomMax bound absolute zoom levels.
	ZoomMin float64 `yaml:"zoom_min"`
	ZoomMax float64 `yaml:"zoom_max"`

	// HasAbsoluteZoom is false for models that only support
	// continuous manual zoom.
	HasAbsoluteZoom bool `yaml:"has_absolute_zoom"`

	// HasAngleControl is false for models without yaw and pitch
	// motors addressable by absolute angle.
	HasAngleControl bool `yaml:"has_angle_control"`
}

// builtins holds the factory profiles keyed by camera model.
var builtins = map[wire.CameraModel]Profile{
	wire.ModelZR10: {
		Name:   "ZR10",
		YawMin: -135, YawMax: 135,
		PitchMin: -90, PitchMax: 25,
		ZoomMin: 1, ZoomMax: 30,
		HasAbsoluteZoom: true,
		HasAngleControl: true,
	},
	wire.ModelA8Mini: {
		Name:   "A8 mini",
		YawMin: -135, YawMax: 135,
		PitchMin: -90, PitchMax: 25,
		ZoomMin: 1, ZoomMax: 6,
		HasAbsoluteZoom: true,
		HasAngleControl: true,
	},
	wire.ModelA2Mini: {
		Name:   "A2 mini",
		YawMin: 0, YawMax: 0,
		PitchMin: -90, PitchMax: 25,
		ZoomMin: 1, ZoomMax: 1,
		HasAbsoluteZoom: false,
		HasAngleControl: true,
	},
	wire.ModelZR30: {
		Name:   "ZR30",
		YawMin: -270, YawMax: 270,
		PitchMin: -90, PitchMax: 25,
		ZoomMin: 1, ZoomMax: 30,
		HasAbsoluteZoom: true,
		HasAngleControl: true,
	},
	wire.ModelZT6: {
		Name:   "ZT6",
		YawMin: -270, YawMax: 270,
		PitchMin: -90, PitchMax: 25,
		ZoomMin: 1, ZoomMax: 6,
		HasAbsoluteZoom: true,
		HasAngleControl: true,
	},
	wire.ModelZT30: {
		Name:   "ZT30",
		YawMin: -270, YawMax: 270,
		PitchMin: -90, PitchMax: 25,
		ZoomMin: 1, ZoomMax: 30,
		HasAbsoluteZoom: true,
		HasAngleControl: true,
	},
}

// Default is the profile used before the camera model is known. It
// accepts the widest ranges of any supported model so early commands
// are not rejected spuriously.
func Default() Profile {
	return Profile{
		Name:   "generic",
		YawMin: -270, YawMax: 270,
		PitchMin: -90, PitchMax: 25,
		ZoomMin: 1, ZoomMax: 30,
		HasAbsoluteZoom: true,
		HasAngleControl: true,
	}
}

// ForModel returns the built-in profile for a camera model. Unknown
// models get the permissive default.
func ForModel(model wire.CameraModel) Profile {
	if p, ok := builtins[model]; ok {
		return p
	}
	return Default()
}

// ValidateYawPitch reports whether the angles are commandable on this
// model.
func (p Profile) ValidateYawPitch(yaw, pitch float64) error {
	if !p.HasAngleControl {
		return fmt.Errorf("%s does not support angle control", p.Name)
	}
	if yaw < p.YawMin || yaw > p.YawMax {
		return fmt.Errorf("yaw %.1f outside [%.1f, %.1f]", yaw, p.YawMin, p.YawMax)
	}
	if pitch < p.PitchMin || pitch > p.PitchMax {
		return fmt.Errorf("pitch %.1f outside [%.1f, %.1f]", pitch, p.PitchMin, p.PitchMax)
	}
	return nil
}

// ValidateZoom reports whether the zoom level is commandable on this
// model.
func (p Profile) ValidateZoom(level float64) error {
	if !p.HasAbsoluteZoom {
		return fmt.Errorf("%s does not support absolute zoom", p.Name)
	}
	if level < p.ZoomMin || level > p.ZoomMax {
		return fmt.Errorf("zoom %.1f outside [%.1f, %.1f]", level, p.ZoomMin, p.ZoomMax)
	}
	return nil
}

// overrideFile is the YAML shape of a profile override file: a map
// from model name to partial or full profile.
type overrideFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadOverrides reads profiles from a YAML file and merges them over
// the built-ins by name. Models not mentioned keep their built-in
// profile.
func LoadOverrides(path string) (map[wire.CameraModel]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	return ParseOverrides(data)
}

// ParseOverrides merges YAML profile definitions over the built-ins.
func ParseOverrides(data []byte) (map[wire.CameraModel]Profile, error) {
	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse profile file: %w", err)
	}

	merged := make(map[wire.CameraModel]Profile, len(builtins))
	for model, p := range builtins {
		merged[model] = p
	}

	for _, override := range file.Profiles {
		model, ok := modelByName(override.Name)
		if !ok {
			return nil, fmt.Errorf("unknown camera model %q in profile file", override.Name)
		}
		merged[model] = override
	}
	return merged, nil
}

func modelByName(name string) (wire.CameraModel, bool) {
	for model, p := range builtins {
		if p.Name == name {
			return model, true
		}
	}
	return wire.ModelUnknown, false
}
