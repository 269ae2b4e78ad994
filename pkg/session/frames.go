package session

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/webcast/pkg/protocol"
)

// readLoop reads frames until the transport fails or closes. Frames are
// handled one at a time, in arrival order. A normal closure by the peer
// returns nil.
func (s *Session) readLoop(ctx context.Context) error {
	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return err
		}

		s.handleMessage(ctx, messageType, data)
	}
}

// handleMessage processes one inbound frame. Decode failures are reported
// to consumers and never end the session.
func (s *Session) handleMessage(ctx context.Context, messageType int, data []byte) {
	if messageType != websocket.BinaryMessage {
		s.textFrames.Add(1)
		s.metrics.frameReceived(frameText)
		s.logger.Debug("ignoring non-binary frame", "type", messageType, "bytes", len(data))
		return
	}

	s.framesRecv.Add(1)
	s.bytesRecv.Add(uint64(len(data)))
	s.metrics.frameReceived(frameBinary)

	c, err := s.decode(ctx, data)
	if err != nil {
		s.decodeFailures.Add(1)
		s.metrics.decodeFailed()
		s.logger.Debug("frame decode failed", "bytes", len(data), "error", err)
		s.emit(Event{Kind: EventDecodeFailed, Time: s.clock.Now(), Err: err})
		return
	}

	if c.NeedsAck() {
		if err := s.sendAck(c.ID); err != nil && !errors.Is(err, ErrSessionClosed) {
			s.logger.Warn("ack write failed", "id", c.ID, "error", err)
		}
	}

	if c.HasPayload() {
		s.payloads.Add(1)
		s.metrics.payloadReceived(len(c.Payload))
		s.emit(Event{
			Kind:      EventPayload,
			Time:      s.clock.Now(),
			Payload:   c.Payload,
			Container: c,
		})
	}
}

// sendAck acknowledges the container with the given id.
func (s *Session) sendAck(id uint64) error {
	data, err := s.codec.Encode(protocol.NewAck(id))
	if err != nil {
		return NewSessionError(s.id, "encode ack", err)
	}
	if err := s.write(data); err != nil {
		s.metrics.writeFailed(writeAck)
		return err
	}
	s.acksSent.Add(1)
	s.metrics.ackSent()
	return nil
}

// sendKeepalive writes the fixed keepalive frame. Failures are logged; a
// dead transport is noticed by the read loop.
func (s *Session) sendKeepalive() {
	if err := s.write(protocol.Keepalive()); err != nil {
		if !errors.Is(err, ErrSessionClosed) {
			s.metrics.writeFailed(writeKeepalive)
			s.logger.Warn("keepalive write failed", "error", err)
		}
		return
	}
	s.keepalivesSent.Add(1)
	s.metrics.keepaliveSent()
}

// write sends one binary frame. It refuses to touch the connection once
// the session is closed.
func (s *Session) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}

	if s.config.WriteTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return NewSessionError(s.id, "write", err)
	}
	s.bytesSent.Add(uint64(len(data)))
	return nil
}

// hostOf returns the host of an endpoint for logging, leaving out the query.
func hostOf(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return u.Host
}
