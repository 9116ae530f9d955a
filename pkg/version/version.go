// Package version provides SDK and firmware version parsing and
// comparison.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// SDK is the version of this library.
const SDK = "1.0.0"

// Firmware represents a parsed "major.minor.patch" firmware version
// as reported by the camera.
type Firmware struct {
	Major uint8
	Minor uint8
	Patch uint8
}

// Parse parses a "major.minor.patch" version string.
func Parse(s string) (Firmware, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Firmware{}, fmt.Errorf("invalid version %q: expected major.minor.patch", s)
	}

	var fields [3]uint8
	for i, part := range parts {
		v, err := strconv.ParseUint(part, 10, 8)
		if err != nil || part == "" {
			return Firmware{}, fmt.Errorf("invalid version %q: bad component %q", s, part)
		}
		fields[i] = uint8(v)
	}

	return Firmware{Major: fields[0], Minor: fields[1], Patch: fields[2]}, nil
}

// String returns the version as "major.minor.patch".
func (v Firmware) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 as v is older than, equal to, or newer
// than other.
func (v Firmware) Compare(other Firmware) int {
	pairs := [][2]uint8{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v is other or newer. Useful for gating
// features on a minimum firmware release.
func (v Firmware) AtLeast(other Firmware) bool {
	return v.Compare(other) >= 0
}
