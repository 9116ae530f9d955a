// Package wire defines the SIYI gimbal-camera binary wire format.
//
// Every UDP datagram carries exactly one frame with this layout,
// little-endian throughout:
//
//	┌────────┬──────┬─────────┬─────────┬───────┬─────────┬────────┐
//	│ STX    │ CTRL │ DataLen │ Seq     │ CmdID │ Payload │ CRC16  │
//	│ 2 B    │ 1 B  │ 2 B     │ 2 B     │ 1 B   │ n B     │ 2 B    │
//	│ 0x5566 │      │ n       │         │       │         │        │
//	└────────┴──────┴─────────┴─────────┴───────┴─────────┴────────┘
//
// The CRC16 (CCITT polynomial 0x1021, initial value 0x0000) is
// computed over every byte preceding it and appended low byte first.
// A frame is accepted only if the start marker, declared length, and
// checksum all validate; any single corrupted bit is rejected.
//
// # Encoding and Decoding
//
// Frame.Encode and Decode are pure and stateless; both are safe to
// call concurrently. Encode validates the payload against the
// command's fixed schema length before building the frame.
//
// # Payload Schemas
//
// Each command identifier has a fixed payload schema (field order,
// widths, units). Angles travel as int16 in 0.1-degree units,
// rotation speeds as signed bytes in the range -100..100, zoom levels
// as an integer/fraction byte pair. Builders and parsers for the
// typed payloads live in payloads.go.
package wire
