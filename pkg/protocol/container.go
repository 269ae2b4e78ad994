package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Container type tags carried in the type field.
const (
	TypeMessage   = "msg" // Application payload
	TypeHeartbeat = "hb"  // Client keepalive
	TypeAck       = "ack" // Client acknowledgment
)

// Container field numbers.
const (
	fieldSeqID    protowire.Number = 1
	fieldID       protowire.Number = 2
	fieldService  protowire.Number = 3
	fieldMethod   protowire.Number = 4
	fieldHeaders  protowire.Number = 5
	fieldEncoding protowire.Number = 6
	fieldType     protowire.Number = 7
	fieldPayload  protowire.Number = 8
)

// MessageKind identifies a message the codec knows how to encode.
type MessageKind uint8

const (
	KindContainer MessageKind = 0x01 // Push container
	KindAck       MessageKind = 0x02 // Acknowledgment
)

// String returns the string representation of the message kind.
func (k MessageKind) String() string {
	switch k {
	case KindContainer:
		return "Container"
	case KindAck:
		return "Ack"
	default:
		return "Unknown"
	}
}

// Message is implemented by every encodable wire message.
type Message interface {
	Kind() MessageKind
}

// Container is the unit of framing on the wire: one inbound binary frame.
//
// A positive ID asks the client to acknowledge the container with an Ack
// carrying the same ID. Payload is only set by a Codec, and only for
// containers of type TypeMessage; it is opaque to the session.
type Container struct {
	SeqID    uint64
	ID       uint64
	Service  string
	Method   string
	Headers  map[string]string
	Encoding string
	Type     string
	Raw      []byte

	Payload []byte
}

// Kind implements Message.
func (c *Container) Kind() MessageKind { return KindContainer }

// NeedsAck reports whether the container asks for an acknowledgment.
func (c *Container) NeedsAck() bool { return c.ID > 0 }

// HasPayload reports whether the container embeds an application payload.
func (c *Container) HasPayload() bool { return c.Payload != nil }

// EncodeContainer encodes a Container to bytes. Payload is ignored; Raw is
// written as-is.
func EncodeContainer(c *Container) []byte {
	e := NewEncoder()
	EncodeContainerTo(e, c)
	return e.Bytes()
}

// EncodeContainerTo encodes a Container using the provided encoder.
func EncodeContainerTo(e *Encoder, c *Container) {
	e.WriteUvarint(fieldSeqID, c.SeqID)
	e.WriteUvarint(fieldID, c.ID)
	e.WriteString(fieldService, c.Service)
	e.WriteString(fieldMethod, c.Method)
	e.WriteStringMap(fieldHeaders, c.Headers)
	e.WriteString(fieldEncoding, c.Encoding)
	e.WriteString(fieldType, c.Type)
	e.WriteBytes(fieldPayload, c.Raw)
}

// DecodeContainer decodes the wire fields of a Container. It does not
// inflate the payload; see ProtobufCodec for that.
func DecodeContainer(data []byte) (*Container, error) {
	if len(data) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	d := NewDecoder(data)
	return DecodeContainerFrom(d)
}

// DecodeContainerFrom decodes a Container from a decoder.
func DecodeContainerFrom(d *Decoder) (*Container, error) {
	c := &Container{}
	for !d.EOF() {
		num, typ, err := d.Next()
		if err != nil {
			return nil, err
		}

		switch num {
		case fieldSeqID:
			c.SeqID, err = d.ReadUvarint(typ)
		case fieldID:
			c.ID, err = d.ReadUvarint(typ)
		case fieldService:
			c.Service, err = d.ReadString(typ)
		case fieldMethod:
			c.Method, err = d.ReadString(typ)
		case fieldHeaders:
			err = c.readHeader(d, typ)
		case fieldEncoding:
			c.Encoding, err = d.ReadString(typ)
		case fieldType:
			c.Type, err = d.ReadString(typ)
		case fieldPayload:
			var raw []byte
			if raw, err = d.ReadBytes(typ); err == nil {
				c.Raw = append([]byte(nil), raw...)
			}
		default:
			err = d.Skip(num, typ)
		}
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", num, err)
		}
	}
	return c, nil
}

func (c *Container) readHeader(d *Decoder, typ protowire.Type) error {
	entry, err := d.ReadBytes(typ)
	if err != nil {
		return err
	}
	if c.Headers == nil {
		c.Headers = make(map[string]string)
	}
	if len(c.Headers) >= MaxHeaderCount {
		return ErrCollectionTooLarge
	}
	key, value, err := ReadStringMapEntry(entry)
	if err != nil {
		return err
	}
	c.Headers[key] = value
	return nil
}
