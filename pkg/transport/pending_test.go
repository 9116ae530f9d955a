package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bmoradi93/siyi-sdk/pkg/wire"
)

func TestPendingTrackAndComplete(t *testing.T) {
	table := newPendingTable()

	ch, err := table.track(42)
	require.NoError(t, err)

	frame := &wire.Frame{Ctrl: wire.CtrlAck, Seq: 42, Cmd: wire.CmdCenter, Payload: []byte{0x01}}
	assert.True(t, table.complete(frame), "tracked seq should complete")

	select {
	case got := <-ch:
		assert.Equal(t, frame, got)
	default:
		t.Fatal("completed frame not delivered")
	}

	// Second completion of the same seq finds no entry.
	assert.False(t, table.complete(frame), "duplicate completion should find no entry")
}

func TestPendingUntrack(t *testing.T) {
	table := newPendingTable()

	_, err := table.track(7)
	require.NoError(t, err)

	table.untrack(7)
	assert.False(t, table.complete(&wire.Frame{Seq: 7}), "untracked seq should not complete")

	// Untracking again or untracking an unknown seq is harmless.
	table.untrack(7)
	table.untrack(99)
}

func TestPendingDuplicateTrack(t *testing.T) {
	table := newPendingTable()

	_, err := table.track(1)
	require.NoError(t, err)

	_, err = table.track(1)
	assert.ErrorIs(t, err, ErrDuplicateSeq)
}

func TestPendingCloseFailsWaiters(t *testing.T) {
	table := newPendingTable()

	ch1, err := table.track(1)
	require.NoError(t, err)
	ch2, err := table.track(2)
	require.NoError(t, err)

	table.close()

	_, ok := <-ch1
	assert.False(t, ok, "waiter channel should be closed")
	_, ok = <-ch2
	assert.False(t, ok, "waiter channel should be closed")

	_, err = table.track(3)
	assert.ErrorIs(t, err, ErrSessionClosed)

	// Closing twice is harmless.
	table.close()
}
