// Package session implements the client side of a webcast push stream.
//
// A Session dials a WebSocket endpoint with an authenticated handshake,
// keeps the stream alive with a periodic keepalive frame, decodes every
// binary frame into a protocol.Container, acknowledges containers that ask
// for it, and publishes application payloads to the consumer.
//
// # Connecting
//
//	cfg := session.DefaultConfig()
//	cfg.URL = "wss://push.example.com/webcast/im/push/v2/"
//	cfg.ClientParams = map[string]string{"aid": "6383", "version_code": "180800"}
//	cfg.Params = map[string]string{"room_id": roomID}
//	cfg.Credentials = session.StaticCredentials("ttwid=...")
//
//	s := session.Connect(ctx, cfg, session.WithLogger(logger))
//	defer s.Close()
//
//	for ev := range s.Events() {
//	    switch ev.Kind {
//	    case session.EventPayload:
//	        handle(ev.Container.Method, ev.Payload)
//	    case session.EventDecodeFailed:
//	        logger.Warn("bad frame", "error", ev.Err)
//	    }
//	}
//
// Params are merged over ClientParams and win on key collision. Headers are
// applied after the credential cookie, so a custom "Cookie" header replaces
// it.
//
// # Lifecycle
//
//	Connecting ──dial ok──▶ Open ──close/error──▶ Closed
//	     │                                          ▲
//	     └──────────────dial failed─────────────────┘
//
// The keepalive runs only while the session is Open. Closed is terminal;
// reconnecting means connecting a new Session.
//
// # Events
//
// Events are delivered in frame arrival order. EventDecodeFailed reports a
// frame the codec rejected; the session stays open. EventClosed is the last
// event before the channel closes. Delivery blocks when the buffer is full,
// which in turn stops reading from the transport.
package session
