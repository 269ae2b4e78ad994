package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var errConnClosed = errors.New("fake conn: use of closed connection")

type inbound struct {
	messageType int
	data        []byte
	err         error
}

type written struct {
	messageType int
	data        []byte
}

// fakeConn is an in-memory Conn. Frames pushed with deliver are returned by
// ReadMessage in order; writes are recorded.
type fakeConn struct {
	in     chan inbound
	closed chan struct{}
	once   sync.Once

	mu       sync.Mutex
	writes   []written
	writeErr error
	limit    int64
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan inbound, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case m := <-c.in:
		if m.err != nil {
			return 0, nil, m.err
		}
		return m.messageType, m.data, nil
	case <-c.closed:
		return 0, nil, errConnClosed
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-c.closed:
		return errConnClosed
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.writes = append(c.writes, written{messageType, append([]byte(nil), data...)})
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) SetReadLimit(limit int64) {
	c.mu.Lock()
	c.limit = limit
	c.mu.Unlock()
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) deliver(messageType int, data []byte) {
	c.in <- inbound{messageType: messageType, data: data}
}

func (c *fakeConn) fail(err error) {
	c.in <- inbound{err: err}
}

// peerClose simulates the server closing the stream with code.
func (c *fakeConn) peerClose(code int) {
	c.fail(&websocket.CloseError{Code: code})
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) sent() []written {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]written(nil), c.writes...)
}

// countWrites returns how many recorded writes equal data.
func (c *fakeConn) countWrites(data []byte) int {
	n := 0
	for _, w := range c.sent() {
		if bytes.Equal(w.data, data) {
			n++
		}
	}
	return n
}

// fakeDialer hands out a prepared connection and records the request.
type fakeDialer struct {
	conn *fakeConn
	err  error

	// block, when set, holds Dial until it is closed or ctx is done.
	block chan struct{}

	mu     sync.Mutex
	calls  int
	url    string
	header http.Header
}

func (d *fakeDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	d.mu.Lock()
	d.calls++
	d.url = url
	d.header = header
	d.mu.Unlock()

	if d.block != nil {
		select {
		case <-d.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{
		interval: d,
		next:     c.now.Add(d),
		c:        make(chan time.Time),
		stopped:  make(chan struct{}),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves the clock forward and delivers every tick that falls due.
// Each tick is handed over before the next one is offered.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	tickers := append([]*fakeTicker(nil), c.tickers...)
	c.mu.Unlock()

	for _, t := range tickers {
		for !t.next.After(now) {
			at := t.next
			t.next = t.next.Add(t.interval)
			select {
			case t.c <- at:
			case <-t.stopped:
			}
		}
	}
}

func (c *fakeClock) tickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

type fakeTicker struct {
	interval time.Duration
	next     time.Time
	c        chan time.Time
	stopped  chan struct{}
	once     sync.Once
}

func (t *fakeTicker) Chan() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.once.Do(func() { close(t.stopped) })
}

func (t *fakeTicker) isStopped() bool {
	select {
	case <-t.stopped:
		return true
	default:
		return false
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.URL = "wss://push.example.com/webcast/im/push/v2/"
	return cfg
}

// startSession connects a Session over a fake transport and waits for it to open.
func startSession(t *testing.T, opts ...Option) (*Session, *fakeConn, *fakeClock) {
	t.Helper()
	conn := newFakeConn()
	clock := newFakeClock()
	opts = append([]Option{
		WithDialer(&fakeDialer{conn: conn}),
		WithClock(clock),
		WithLogger(discardLogger()),
	}, opts...)

	s := Connect(context.Background(), testConfig(), opts...)
	t.Cleanup(func() { _ = s.Close() })

	ev := nextEvent(t, s)
	if ev.Kind != EventOpen {
		t.Fatalf("first event = %v (err %v), want Open", ev.Kind, ev.Err)
	}
	return s, conn, clock
}

func nextEvent(t *testing.T, s *Session) Event {
	t.Helper()
	select {
	case ev, ok := <-s.Events():
		if !ok {
			t.Fatal("event channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

// expectNoEvent fails if an event arrives within a short window.
func expectNoEvent(t *testing.T, s *Session) {
	t.Helper()
	select {
	case ev := <-s.Events():
		t.Fatalf("unexpected event %v", ev.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func waitForWrites(t *testing.T, conn *fakeConn, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(conn.sent()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d writes, have %d", n, len(conn.sent()))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitForState(t *testing.T, s *Session, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %v, have %v", want, s.State())
}

// drainUntilClosed reads events until EventClosed and returns it.
func drainUntilClosed(t *testing.T, s *Session) Event {
	t.Helper()
	for {
		ev := nextEvent(t, s)
		if ev.Kind == EventClosed {
			return ev
		}
	}
}
