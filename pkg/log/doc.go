// Package log provides structured protocol capture for the SIYI SDK.
//
// This package defines the Logger interface and Event types for
// recording protocol-level traffic (raw datagrams, decoded commands,
// session state changes). It is separate from operational logging
// (zap): protocol capture produces a complete machine-readable trace
// of the conversation with the camera for debugging and analysis.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: mirror events into the zap logger
//	cfg.ProtocolLogger = log.NewZapAdapter(zapLogger)
//
//	// For field debugging: write a binary capture file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("gimbal.slog")
//
//	// Both at once
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewZapAdapter(zapLogger),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: raw datagram bytes (FrameEvent)
//   - Wire: decoded command frames (CommandEvent)
//   - Session: connection state changes (StateChangeEvent)
//
// Errors at any layer carry an ErrorEvent.
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events. Reader replays
// a capture file with optional filtering.
package log
