package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/webcast/pkg/protocol"
)

// State is the lifecycle state of a Session.
type State int32

const (
	StateConnecting State = iota // Dialing
	StateOpen                    // Transport connected, keepalive running
	StateClosed                  // Terminal
)

// String returns the string representation of the state.
func (st State) String() string {
	switch st {
	case StateConnecting:
		return "Connecting"
	case StateOpen:
		return "Open"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Stats is a snapshot of a session's counters.
//
// TextFrames is local diagnostics only. Non-binary frames are not protocol
// traffic: they are never decoded, acked or published, and they are not
// included in FramesReceived or BytesReceived.
type Stats struct {
	FramesReceived uint64 // Binary frames
	TextFrames     uint64 // Non-binary frames, ignored
	BytesReceived  uint64
	BytesSent      uint64
	AcksSent       uint64
	KeepalivesSent uint64
	Payloads       uint64
	DecodeFailures uint64
}

// Session owns one connection attempt to a push endpoint, from dial to close.
// A closed Session is not reusable; connect a new one to reconnect.
type Session struct {
	id     string
	url    string
	header http.Header
	config *Config

	// Collaborators
	codec   protocol.Codec
	dialer  Dialer
	clock   Clock
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	mu      sync.Mutex // Protects state, conn, ka, err
	state   State
	conn    Conn
	ka      *keepalive
	err     error
	initErr error

	writeMu sync.Mutex // Serializes conn writes
	closed  atomic.Bool

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	cancel    context.CancelFunc

	framesRecv     atomic.Uint64
	textFrames     atomic.Uint64
	bytesRecv      atomic.Uint64
	bytesSent      atomic.Uint64
	acksSent       atomic.Uint64
	keepalivesSent atomic.Uint64
	payloads       atomic.Uint64
	decodeFailures atomic.Uint64
}

// Option configures a Session's collaborators.
type Option func(*Session)

// WithCodec sets the frame codec. Default: protocol.DefaultCodec.
func WithCodec(codec protocol.Codec) Option {
	return func(s *Session) {
		s.codec = codec
	}
}

// WithDialer sets the transport dialer. Default: WebSocketDialer{}.
func WithDialer(dialer Dialer) Option {
	return func(s *Session) {
		s.dialer = dialer
	}
}

// WithClock sets the clock that drives the keepalive.
func WithClock(clock Clock) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMetrics records session activity in m.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithTracer sets the tracer for decode spans. Default: the global
// OpenTelemetry tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Session) {
		s.tracer = tracer
	}
}

// generateSessionID generates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// Connect creates a Session and starts connecting in the background.
//
// The endpoint URL and handshake headers are computed before Connect
// returns. Everything after that, including dial failures, is reported
// through Events and State. Cancelling ctx closes the session.
func Connect(ctx context.Context, config *Config, opts ...Option) *Session {
	s := newSession(config, opts...)
	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)
	return s
}

// newSession builds a Session in StateConnecting without starting it.
func newSession(config *Config, opts ...Option) *Session {
	cfg := config.Clone()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.applyDefaults()

	id := generateSessionID()
	s := &Session{
		id:     id,
		config: cfg,
		codec:  protocol.DefaultCodec,
		dialer: WebSocketDialer{},
		clock:  realClock{},
		logger: slog.Default(),
		tracer: otel.Tracer(defaultTracerName),
		events: make(chan Event, cfg.EventBuffer),
		done:   make(chan struct{}),
		cancel: func() {},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session_id", id)

	s.url, s.initErr = cfg.Endpoint()
	if s.initErr == nil {
		s.header, s.initErr = cfg.Header()
	}

	s.metrics.sessionStarted()
	return s
}

// run drives the session to its terminal state and closes the event channel.
func (s *Session) run(ctx context.Context) {
	err := s.serve(ctx)
	s.teardown(err)
	s.emitFinal(Event{Kind: EventClosed, Time: s.clock.Now(), Err: s.Err()})
	close(s.events)
}

func (s *Session) serve(ctx context.Context) error {
	if s.initErr != nil {
		return NewSessionError(s.id, "connect", s.initErr)
	}

	conn, err := s.dial(ctx)
	if err != nil {
		return NewSessionError(s.id, "dial", err)
	}
	if !s.open(conn) {
		_ = conn.Close()
		return nil
	}

	s.logger.Info("session open", "host", hostOf(s.url))
	s.emit(Event{Kind: EventOpen, Time: s.clock.Now()})

	stop := context.AfterFunc(ctx, func() {
		s.teardown(context.Cause(ctx))
	})
	defer stop()

	return s.readLoop(ctx)
}

func (s *Session) dial(ctx context.Context) (Conn, error) {
	if s.config.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.HandshakeTimeout)
		defer cancel()
	}

	conn, err := s.dialer.Dial(ctx, s.url, s.header.Clone())
	if err != nil {
		return nil, err
	}
	if rl, ok := conn.(readLimiter); ok {
		rl.SetReadLimit(s.config.MaxMessageSize)
	}
	return conn, nil
}

// open records the live connection and starts the keepalive.
// It reports false if the session was closed while dialing.
func (s *Session) open(conn Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return false
	}
	s.conn = conn
	s.state = StateOpen

	if s.ka != nil {
		s.ka.Stop()
	}
	s.ka = startKeepalive(s.clock.NewTicker(s.config.KeepaliveInterval), s.sendKeepalive)
	return true
}

// teardown moves the session to StateClosed. Only the first call has any
// effect; cause is recorded as the session error.
func (s *Session) teardown(cause error) {
	s.closeOnce.Do(func() {
		s.closed.Store(true)

		s.mu.Lock()
		s.state = StateClosed
		s.err = cause
		ka, conn := s.ka, s.conn
		s.ka = nil
		s.mu.Unlock()

		if conn != nil {
			_ = conn.Close()
		}
		if ka != nil {
			ka.Stop()
		}
		s.cancel()
		close(s.done)

		s.metrics.sessionClosed()
		if cause != nil {
			s.logger.Info("session closed", "error", cause)
		} else {
			s.logger.Info("session closed")
		}
	})
}

// Close tears the session down. It is safe to call more than once and
// from any goroutine.
func (s *Session) Close() error {
	s.teardown(nil)
	return nil
}

// emit delivers ev, waiting for buffer space unless the session closes first.
func (s *Session) emit(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	default:
	}

	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

// emitFinal delivers ev only if there is room; the channel is about to close.
func (s *Session) emitFinal(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.logger.Debug("event buffer full, dropping event", "kind", ev.Kind)
	}
}

// ID returns the session ID used in logs and traces.
func (s *Session) ID() string { return s.id }

// URL returns the endpoint with merged query parameters.
func (s *Session) URL() string { return s.url }

// Header returns a copy of the handshake headers.
func (s *Session) Header() http.Header { return s.header.Clone() }

// Events returns the session's notifications. The channel is closed after
// the EventClosed notification.
func (s *Session) Events() <-chan Event { return s.events }

// Done is closed when the session reaches StateClosed.
func (s *Session) Done() <-chan struct{} { return s.done }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns why the session closed: nil for Close or a normal peer
// closure, otherwise the transport, dial or context error.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	return Stats{
		FramesReceived: s.framesRecv.Load(),
		TextFrames:     s.textFrames.Load(),
		BytesReceived:  s.bytesRecv.Load(),
		BytesSent:      s.bytesSent.Load(),
		AcksSent:       s.acksSent.Load(),
		KeepalivesSent: s.keepalivesSent.Load(),
		Payloads:       s.payloads.Load(),
		DecodeFailures: s.decodeFailures.Load(),
	}
}
