package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/webcast/pkg/protocol"
)

// Default tracer name for sessions.
const defaultTracerName = "webcast"

// decode runs the codec inside a span. Every failure, including a codec
// panic, comes back as a *protocol.DecodeError.
func (s *Session) decode(ctx context.Context, data []byte) (c *protocol.Container, err error) {
	_, span := s.tracer.Start(ctx, "webcast.decode",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("webcast.session_id", s.id),
			attribute.Int("webcast.frame_bytes", len(data)),
		),
	)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			c = nil
			err = protocol.NewDecodeError(len(data), fmt.Errorf("codec panic: %v", r))
		}
		s.metrics.observeDecode(time.Since(start))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.String("webcast.container_id", strconv.FormatUint(c.ID, 10)),
				attribute.String("webcast.type", c.Type),
				attribute.Bool("webcast.has_payload", c.HasPayload()),
			)
		}
		span.End()
	}()

	c, err = s.codec.Decode(data)
	if err != nil {
		return nil, protocol.NewDecodeError(len(data), err)
	}
	if c == nil {
		return nil, protocol.NewDecodeError(len(data), protocol.ErrNilContainer)
	}
	return c, nil
}
