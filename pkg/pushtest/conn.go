package pushtest

import (
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/webcast/pkg/protocol"
)

// Conn is the server side of one client connection.
type Conn struct {
	ws     *websocket.Conn
	logger *slog.Logger

	// Header and Query are the handshake request's headers and query.
	Header http.Header
	Query  url.Values

	writeMu    sync.Mutex
	acks       chan uint64
	other      chan []byte
	keepalives atomic.Int64
	dropped    atomic.Int64

	mu     sync.Mutex // Protects ackIDs
	ackIDs []uint64

	done       chan struct{}
	closeOnce  sync.Once
}

func newConn(ws *websocket.Conn, r *http.Request, logger *slog.Logger) *Conn {
	return &Conn{
		ws:     ws,
		logger: logger,
		Header: r.Header.Clone(),
		Query:  r.URL.Query(),
		acks:   make(chan uint64, 256),
		other:  make(chan []byte, 256),
		done:   make(chan struct{}),
	}
}

// readLoop sorts client frames into keepalives, acks and everything else.
func (c *Conn) readLoop() {
	defer c.Close()

	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				c.logger.Debug("client read error", "error", err)
			}
			return
		}
		if messageType != websocket.BinaryMessage {
			c.logger.Warn("client sent non-binary frame", "type", messageType)
			continue
		}

		if protocol.IsKeepalive(data) {
			c.keepalives.Add(1)
			continue
		}
		if ack, err := protocol.DecodeAck(data); err == nil {
			c.mu.Lock()
			c.ackIDs = append(c.ackIDs, ack.ID)
			c.mu.Unlock()

			select {
			case c.acks <- ack.ID:
			default:
				c.dropped.Add(1)
			}
			continue
		}

		select {
		case c.other <- data:
		default:
			c.dropped.Add(1)
		}
	}
}

// Send encodes and writes a container.
func (c *Conn) Send(container *protocol.Container) error {
	return c.SendRaw(websocket.BinaryMessage, protocol.EncodeContainer(container))
}

// SendRaw writes a frame as-is.
func (c *Conn) SendRaw(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.ws.WriteMessage(messageType, data)
}

// CloseWith sends a close frame with code and reason.
func (c *Conn) CloseWith(code int, reason string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	msg := websocket.FormatCloseMessage(code, reason)
	return c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

// Acks delivers ack ids in order while its buffer has room. Ids that do not
// fit are dropped from the channel but still recorded by AckIDs.
func (c *Conn) Acks() <-chan uint64 { return c.acks }

// AckIDs returns the id of every ack the client has sent, in order.
func (c *Conn) AckIDs() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uint64(nil), c.ackIDs...)
}

// Unrecognized delivers binary frames that were neither acks nor keepalives.
// Frames that do not fit the buffer are dropped.
func (c *Conn) Unrecognized() <-chan []byte { return c.other }

// Dropped returns how many notifications were dropped because nobody was
// draining Acks or Unrecognized.
func (c *Conn) Dropped() int { return int(c.dropped.Load()) }

// Keepalives returns how many keepalive frames the client has sent.
func (c *Conn) Keepalives() int { return int(c.keepalives.Load()) }

// Done is closed when the connection ends.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Close drops the connection without a close handshake.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		_ = c.ws.Close()
		close(c.done)
	})
}
