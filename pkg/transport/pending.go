package transport

import (
	"errors"
	"sync"

	"github.com/Bmoradi93/siyi-sdk/pkg/wire"
)

// ErrDuplicateSeq is returned when a sequence number is tracked twice
// without the first request completing.
var ErrDuplicateSeq = errors.New("sequence number already in flight")

// pendingTable correlates ack frames with in-flight requests by
// sequence number. Each entry owns a buffered channel so delivery
// from the receive loop never blocks.
type pendingTable struct {
	mu      sync.Mutex
	entries map[uint16]chan *wire.Frame
	closed  bool
}

func newPendingTable() *pendingTable {
	return &pendingTable{entries: make(map[uint16]chan *wire.Frame)}
}

// track registers a sequence number and returns the channel its ack
// will be delivered on. The channel is closed without a value if the
// session shuts down first.
func (t *pendingTable) track(seq uint16) (chan *wire.Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrSessionClosed
	}
	if _, exists := t.entries[seq]; exists {
		return nil, ErrDuplicateSeq
	}

	ch := make(chan *wire.Frame, 1)
	t.entries[seq] = ch
	return ch, nil
}

// untrack removes a sequence number, typically after a timeout. Safe
// to call for entries already completed or never tracked.
func (t *pendingTable) untrack(seq uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, seq)
}

// complete delivers a frame to the tracked entry for its sequence
// number. Completion is exactly-once: the entry is removed before
// delivery, so a duplicate ack finds no receiver. Returns false when
// no request was waiting.
func (t *pendingTable) complete(frame *wire.Frame) bool {
	t.mu.Lock()
	ch, ok := t.entries[frame.Seq]
	if ok {
		delete(t.entries, frame.Seq)
	}
	t.mu.Unlock()

	if !ok {
		return false
	}
	ch <- frame
	return true
}

// close fails every in-flight request by closing its channel and
// rejects all future tracking.
func (t *pendingTable) close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	for seq, ch := range t.entries {
		close(ch)
		delete(t.entries, seq)
	}
}
