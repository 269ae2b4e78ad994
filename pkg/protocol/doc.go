// Package protocol implements the container wire format of the webcast push
// stream.
//
// Every WebSocket binary frame carries exactly one container, encoded in the
// protobuf wire format. The package decodes containers without generated code,
// walking fields directly with protowire.
//
// # Container Fields
//
//	┌────┬──────────┬────────┬──────────────────────────────────────┐
//	│ No │ Name     │ Wire   │ Meaning                              │
//	├────┼──────────┼────────┼──────────────────────────────────────┤
//	│ 1  │ seq_id   │ varint │ Server sequence number               │
//	│ 2  │ id       │ varint │ Ack correlation id (0 = no ack)      │
//	│ 3  │ service  │ bytes  │ Routing service                      │
//	│ 4  │ method   │ bytes  │ Routing method                       │
//	│ 5  │ headers  │ bytes  │ Repeated {1: key, 2: value}          │
//	│ 6  │ encoding │ bytes  │ Payload encoding ("gzip", "pb", "")  │
//	│ 7  │ type     │ bytes  │ "msg", "hb" or "ack"                 │
//	│ 8  │ payload  │ bytes  │ Application payload                  │
//	└────┴──────────┴────────┴──────────────────────────────────────┘
//
// Unknown fields are skipped.
//
// # Client Messages
//
// The client sends two things:
//
//   - Keepalive: the fixed bytes 3A 02 68 62 ({type: "hb"}) every 10 seconds.
//   - Ack: {id, type: "ack"} for every container with a positive id.
//
// # Payloads
//
// Only containers of type "msg" carry an application payload. The payload is
// inflated when the encoding is "gzip" and otherwise passed through. Its
// contents are opaque to this package.
//
// # Limits
//
// Frames larger than MaxFrameSize, payloads that inflate past MaxPayloadSize,
// and containers with more than MaxHeaderCount headers are rejected.
package protocol
