package state

import (
	"sync"
	"testing"
	"time"

	"github.com/Bmoradi93/siyi-sdk/pkg/wire"
)

func TestSnapshotEmpty(t *testing.T) {
	store := NewStore()

	snap := store.Snapshot()
	if !snap.LastSeen.IsZero() {
		t.Error("empty store should have zero LastSeen")
	}
	if !store.IsStale(time.Hour) {
		t.Error("empty store should be stale at any threshold")
	}
}

func TestSettersRefreshTimestamps(t *testing.T) {
	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore()
	store.now = func() time.Time { return current }

	store.SetAttitude(wire.Attitude{Yaw: 10, Pitch: -20, Roll: 0.5, HasRates: true})
	store.SetZoomLevel(4.5)
	store.SetGimbalInfo(wire.GimbalInfo{Motion: wire.MotionFollow, Recording: wire.RecordingOn})
	store.SetFirmware(wire.FirmwareVersion{Gimbal: "3.4.0"})
	store.SetHardware(wire.HardwareID{ID: "6b00112233", Model: wire.ModelZR10})
	store.SetFeedback(wire.FeedbackSuccess)

	snap := store.Snapshot()
	for name, at := range map[string]time.Time{
		"attitude": snap.AttitudeAt,
		"zoom":     snap.ZoomAt,
		"info":     snap.InfoAt,
		"firmware": snap.FirmwareAt,
		"hardware": snap.HardwareAt,
		"feedback": snap.FeedbackAt,
		"lastSeen": snap.LastSeen,
	} {
		if !at.Equal(current) {
			t.Errorf("%s timestamp not refreshed: got %v", name, at)
		}
	}

	if snap.Attitude.Yaw != 10 || snap.ZoomLevel != 4.5 {
		t.Errorf("values not stored: %+v", snap)
	}
	if snap.Info.Motion != wire.MotionFollow {
		t.Errorf("motion mode not stored: %v", snap.Info.Motion)
	}
}

func TestAnglesOnlyReportKeepsRates(t *testing.T) {
	store := NewStore()

	store.SetAttitude(wire.Attitude{Yaw: 1, YawRate: 5, PitchRate: -5, HasRates: true})
	store.SetAttitude(wire.Attitude{Yaw: 2, Pitch: 3})

	att := store.Snapshot().Attitude
	if att.Yaw != 2 || att.Pitch != 3 {
		t.Errorf("angles not updated: %+v", att)
	}
	if att.YawRate != 5 || att.PitchRate != -5 {
		t.Errorf("rates lost on angles-only update: %+v", att)
	}
}

func TestIsStale(t *testing.T) {
	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore()
	store.now = func() time.Time { return current }

	store.Touch()

	if store.IsStale(time.Second) {
		t.Error("store should be fresh immediately after Touch")
	}

	current = current.Add(2 * time.Second)
	if !store.IsStale(time.Second) {
		t.Error("store should be stale after threshold elapsed")
	}
	if store.IsStale(time.Minute) {
		t.Error("store should be fresh under a larger threshold")
	}
}

func TestConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.SetAttitude(wire.Attitude{Yaw: float64(n)})
				store.SetZoomLevel(float64(j))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = store.Snapshot()
				_ = store.IsStale(time.Second)
			}
		}()
	}
	wg.Wait()
}
