package log

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Filter selects events during capture replay. Zero-valued fields
// match everything.
type Filter struct {
	// SessionID limits results to one session.
	SessionID string

	// Layer limits results to one layer (use LayerAny for all).
	Layer Layer

	// Category limits results to one category (use CategoryAny for all).
	Category Category
}

// Sentinel values meaning "no filtering" for the respective field.
const (
	LayerAny    Layer    = 0xFF
	CategoryAny Category = 0xFF
)

// NoFilter matches every event.
var NoFilter = Filter{Layer: LayerAny, Category: CategoryAny}

func (f Filter) matches(event Event) bool {
	if f.SessionID != "" && event.SessionID != f.SessionID {
		return false
	}
	if f.Layer != LayerAny && event.Layer != f.Layer {
		return false
	}
	if f.Category != CategoryAny && event.Category != f.Category {
		return false
	}
	return true
}

// Reader replays events from a CBOR capture stream.
type Reader struct {
	decoder interface{ Decode(any) error }
	closer  io.Closer
	filter  Filter
}

// NewReader creates a reader over an arbitrary capture stream.
func NewReader(r io.Reader, filter Filter) *Reader {
	return &Reader{decoder: NewDecoder(r), filter: filter}
}

// OpenCapture opens a capture file for replay.
func OpenCapture(path string, filter Filter) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	reader := NewReader(file, filter)
	reader.closer = file
	return reader, nil
}

// Next returns the next event matching the filter, or io.EOF when the
// stream is exhausted.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.decoder.Decode(&event); err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			return Event{}, fmt.Errorf("failed to decode capture event: %w", err)
		}
		if r.filter.matches(event) {
			return event, nil
		}
	}
}

// All reads every remaining matching event.
func (r *Reader) All() ([]Event, error) {
	var events []Event
	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, event)
	}
}

// Close closes the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
