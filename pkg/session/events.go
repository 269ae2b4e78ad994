package session

import (
	"time"

	"github.com/vango-dev/webcast/pkg/protocol"
)

// EventKind identifies what a session is reporting.
type EventKind uint8

const (
	EventOpen         EventKind = 0x01 // Transport connected
	EventPayload      EventKind = 0x02 // Container with an application payload
	EventDecodeFailed EventKind = 0x03 // Binary frame could not be decoded
	EventClosed       EventKind = 0x04 // Session reached its terminal state
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "Open"
	case EventPayload:
		return "Payload"
	case EventDecodeFailed:
		return "DecodeFailed"
	case EventClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Event is a notification from a session.
//
// Payload and Container are set for EventPayload. Err is set for
// EventDecodeFailed (always a *protocol.DecodeError) and for EventClosed
// when the session ended abnormally.
type Event struct {
	Kind      EventKind
	Time      time.Time
	Payload   []byte
	Container *protocol.Container
	Err       error
}
