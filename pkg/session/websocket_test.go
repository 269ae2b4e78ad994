package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/webcast/pkg/pushtest"
)

func newPushServer(t *testing.T, opts ...pushtest.Option) *pushtest.Server {
	t.Helper()
	srv := pushtest.NewServer(append(opts, pushtest.WithRequiredParams("room_id"))...)
	t.Cleanup(srv.Close)
	return srv
}

func acceptConn(t *testing.T, srv *pushtest.Server) *pushtest.Conn {
	t.Helper()
	conn, err := srv.Accept(2 * time.Second)
	if err != nil {
		t.Fatalf("server never accepted a connection: %v", err)
	}
	t.Cleanup(conn.Close)
	return conn
}

func TestWebSocket_EndToEnd(t *testing.T) {
	srv := newPushServer(t, pushtest.WithCookie("ttwid=abc"))

	cfg := DefaultConfig()
	cfg.URL = srv.URL()
	cfg.Params = map[string]string{"room_id": "7312"}
	cfg.Credentials = StaticCredentials("ttwid=abc")
	cfg.HandshakeTimeout = 5 * time.Second

	clock := newFakeClock()
	s := Connect(context.Background(), cfg, WithClock(clock), WithLogger(discardLogger()))
	defer s.Close()

	if ev := nextEvent(t, s); ev.Kind != EventOpen {
		t.Fatalf("event = %v (%v), want Open", ev.Kind, ev.Err)
	}
	server := acceptConn(t, srv)
	if got := server.Query.Get("room_id"); got != "7312" {
		t.Errorf("room_id = %q, want 7312", got)
	}

	// Payload with ack request
	payload := []byte("webcast response")
	if err := server.SendRaw(websocket.BinaryMessage, payloadFrame(42, payload)); err != nil {
		t.Fatalf("SendRaw() error = %v", err)
	}

	ev := nextEvent(t, s)
	if ev.Kind != EventPayload || !bytes.Equal(ev.Payload, payload) {
		t.Fatalf("event = %v %q, want payload", ev.Kind, ev.Payload)
	}

	select {
	case id := <-server.Acks():
		if id != 42 {
			t.Errorf("ack id = %d, want 42", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server saw no ack")
	}

	// Keepalive
	clock.Advance(10 * time.Second)
	waitFor(t, "keepalive at server", func() bool { return server.Keepalives() == 1 })

	// Corrupt frame does not end the session
	if err := server.SendRaw(websocket.BinaryMessage, []byte{0xFF}); err != nil {
		t.Fatal(err)
	}
	if ev := nextEvent(t, s); ev.Kind != EventDecodeFailed {
		t.Fatalf("event = %v, want DecodeFailed", ev.Kind)
	}

	// Normal closure by the server
	if err := server.CloseWith(websocket.CloseNormalClosure, "bye"); err != nil {
		t.Fatalf("CloseWith() error = %v", err)
	}

	ev = drainUntilClosed(t, s)
	if ev.Err != nil {
		t.Errorf("Closed.Err = %v, want nil", ev.Err)
	}

	stats := s.Stats()
	if stats.AcksSent != 1 || stats.KeepalivesSent != 1 || stats.Payloads != 1 || stats.DecodeFailures != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
	select {
	case data := <-server.Unrecognized():
		t.Errorf("client sent unexpected frame % X", data)
	default:
	}
}

func TestWebSocket_HandshakeRejected(t *testing.T) {
	srv := newPushServer(t, pushtest.WithCookie("ttwid=abc"))

	cfg := DefaultConfig()
	cfg.URL = srv.URL()
	cfg.Params = map[string]string{"room_id": "7312"}
	cfg.Credentials = StaticCredentials("ttwid=wrong")

	s := Connect(context.Background(), cfg, WithLogger(discardLogger()))

	ev := nextEvent(t, s)
	if ev.Kind != EventClosed {
		t.Fatalf("event = %v, want Closed", ev.Kind)
	}
	if !errors.Is(ev.Err, ErrHandshake) {
		t.Errorf("Closed.Err = %v, want ErrHandshake", ev.Err)
	}
	if !strings.Contains(ev.Err.Error(), "403") {
		t.Errorf("Closed.Err = %v, want status 403", ev.Err)
	}
}

func TestWebSocket_ReadLimit(t *testing.T) {
	srv := newPushServer(t)

	cfg := DefaultConfig()
	cfg.URL = srv.URL()
	cfg.Params = map[string]string{"room_id": "1"}
	cfg.MaxMessageSize = 64

	s := Connect(context.Background(), cfg, WithClock(newFakeClock()), WithLogger(discardLogger()))
	defer s.Close()
	if ev := nextEvent(t, s); ev.Kind != EventOpen {
		t.Fatalf("event = %v (%v), want Open", ev.Kind, ev.Err)
	}

	server := acceptConn(t, srv)
	_ = server.SendRaw(websocket.BinaryMessage, payloadFrame(1, bytes.Repeat([]byte("x"), 128)))

	ev := drainUntilClosed(t, s)
	if !errors.Is(ev.Err, websocket.ErrReadLimit) {
		t.Errorf("Closed.Err = %v, want websocket.ErrReadLimit", ev.Err)
	}
}
