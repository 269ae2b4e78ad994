package pushtest

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Path is the endpoint path the server answers on.
const Path = "/webcast/im/push/v2/"

// ErrNoConnection is returned by Accept when no client connected in time.
var ErrNoConnection = errors.New("pushtest: no connection")

// Server is a push endpoint backed by httptest.
type Server struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader
	cookie   string
	params   []string
	logger   *slog.Logger
	conns    chan *Conn

	mu     sync.Mutex // Protects live and closed
	live   map[*Conn]struct{}
	closed bool
}

// Option configures a Server.
type Option func(*Server)

// WithCookie rejects handshakes whose Cookie header is not exactly cookie.
func WithCookie(cookie string) Option {
	return func(s *Server) {
		s.cookie = cookie
	}
}

// WithRequiredParams rejects handshakes missing any of the query keys.
func WithRequiredParams(keys ...string) Option {
	return func(s *Server) {
		s.params = append(s.params, keys...)
	}
}

// WithLogger sets the logger. Default: discards.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer starts a push server.
func NewServer(opts ...Option) *Server {
	s := &Server{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		conns:  make(chan *Conn, 16),
		live:   make(map[*Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.handle)
	s.srv = httptest.NewServer(mux)
	return s
}

// URL returns the ws:// endpoint of the server.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http") + Path
}

// Close shuts the server down and drops every live connection.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	live := make([]*Conn, 0, len(s.live))
	for c := range s.live {
		live = append(live, c)
	}
	s.mu.Unlock()

	for _, c := range live {
		c.Close()
	}
	s.srv.CloseClientConnections()
	s.srv.Close()
}

// Accept waits for the next client connection.
func (s *Server) Accept(timeout time.Duration) (*Conn, error) {
	select {
	case c := <-s.conns:
		return c, nil
	case <-time.After(timeout):
		return nil, ErrNoConnection
	}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if s.cookie != "" && r.Header.Get("Cookie") != s.cookie {
		s.logger.Info("handshake rejected", "reason", "cookie")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	q := r.URL.Query()
	for _, key := range s.params {
		if q.Get(key) == "" {
			s.logger.Info("handshake rejected", "reason", "missing param", "param", key)
			http.Error(w, "missing "+key, http.StatusBadRequest)
			return
		}
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "error", err)
		return
	}

	c := newConn(ws, r, s.logger)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = ws.Close()
		return
	}
	s.live[c] = struct{}{}
	s.mu.Unlock()

	go func() {
		c.readLoop()
		s.mu.Lock()
		delete(s.live, c)
		s.mu.Unlock()
	}()

	select {
	case s.conns <- c:
	default:
		s.logger.Warn("accept queue full, connection not handed out")
	}
}
