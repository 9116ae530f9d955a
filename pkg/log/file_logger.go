package log

import (
	"fmt"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger writes capture events to a file as a CBOR stream.
// Safe for concurrent use.
type FileLogger struct {
	mu      sync.Mutex
	file    *os.File
	encoder *cbor.Encoder
	closed  bool
}

var _ Logger = (*FileLogger)(nil)

// NewFileLogger creates a logger that appends CBOR-encoded events to the
// file at path, creating it if necessary.
func NewFileLogger(path string) (*FileLogger, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}

	return &FileLogger{
		file:    file,
		encoder: NewEncoder(file),
	}, nil
}

// Log encodes the event and appends it to the capture file.
// Events logged after Close are discarded.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	// Encode errors are swallowed: capture logging must never
	// interfere with protocol operation.
	_ = l.encoder.Encode(event)
}

// Close flushes and closes the underlying file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	return l.file.Close()
}
