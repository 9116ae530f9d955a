// Package state holds the last known device state.
//
// The store is written exclusively from the session receive path
// (acks and unsolicited telemetry) and read by applications through
// Snapshot. Every value carries the time it was last refreshed so
// callers can judge staleness themselves or via IsStale.
package state

import (
	"sync"
	"time"

	"github.com/Bmoradi93/siyi-sdk/pkg/wire"
)

// Snapshot is a consistent copy of the device state at one instant.
// Zero-valued timestamps mean the corresponding value was never
// received.
type Snapshot struct {
	Attitude   wire.Attitude
	AttitudeAt time.Time

	ZoomLevel float64
	ZoomAt    time.Time

	Info   wire.GimbalInfo
	InfoAt time.Time

	Firmware   wire.FirmwareVersion
	FirmwareAt time.Time

	Hardware   wire.HardwareID
	HardwareAt time.Time

	Feedback   wire.FuncFeedback
	FeedbackAt time.Time

	// LastSeen is the arrival time of the most recent valid frame
	// of any kind.
	LastSeen time.Time
}

// Store is a thread-safe container for the last known device state.
// The zero value is not usable; create with NewStore.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot

	// now is replaceable for tests.
	now func() time.Time
}

// NewStore creates an empty state store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Snapshot returns a copy of the current device state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// IsStale reports whether no valid frame arrived within threshold.
// A store that never saw a frame is always stale.
func (s *Store) IsStale(threshold time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap.LastSeen.IsZero() {
		return true
	}
	return s.now().Sub(s.snap.LastSeen) > threshold
}

// SetAttitude records a decoded attitude report.
func (s *Store) SetAttitude(att wire.Attitude) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if att.HasRates || !s.snap.Attitude.HasRates {
		s.snap.Attitude = att
	} else {
		// An angles-only report must not erase known rates.
		s.snap.Attitude.Yaw = att.Yaw
		s.snap.Attitude.Pitch = att.Pitch
		s.snap.Attitude.Roll = att.Roll
	}
	s.snap.AttitudeAt = now
	s.snap.LastSeen = now
}

// SetZoomLevel records the current zoom level.
func (s *Store) SetZoomLevel(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.snap.ZoomLevel = level
	s.snap.ZoomAt = now
	s.snap.LastSeen = now
}

// SetGimbalInfo records a decoded gimbal configuration report.
func (s *Store) SetGimbalInfo(info wire.GimbalInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.snap.Info = info
	s.snap.InfoAt = now
	s.snap.LastSeen = now
}

// SetFirmware records the device firmware versions.
func (s *Store) SetFirmware(fw wire.FirmwareVersion) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.snap.Firmware = fw
	s.snap.FirmwareAt = now
	s.snap.LastSeen = now
}

// SetHardware records the device hardware identity.
func (s *Store) SetHardware(hw wire.HardwareID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.snap.Hardware = hw
	s.snap.HardwareAt = now
	s.snap.LastSeen = now
}

// SetFeedback records the outcome of the last camera function.
func (s *Store) SetFeedback(fb wire.FuncFeedback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.snap.Feedback = fb
	s.snap.FeedbackAt = now
	s.snap.LastSeen = now
}

// Touch refreshes LastSeen without changing any value. Called for
// valid frames that carry no state, such as plain status acks.
func (s *Store) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.LastSeen = s.now()
}
