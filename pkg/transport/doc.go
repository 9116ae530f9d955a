// Package transport implements the UDP datagram session to a SIYI
// gimbal camera.
//
// A Session owns one UDP socket bound to an ephemeral local port and
// a single receive loop. Outbound frames are serialized through Send;
// inbound datagrams are decoded and routed either to a pending
// request (matched by sequence number) or to the session handler for
// unsolicited telemetry. Malformed datagrams are counted, captured,
// and dropped without disturbing the session.
//
// The session does not interpret command payloads. Correlation,
// retries, and timeouts live one layer up in pkg/client.
package transport
