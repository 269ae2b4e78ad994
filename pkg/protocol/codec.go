package protocol

import "fmt"

// Codec turns raw frame bytes into containers and messages into frame bytes.
type Codec interface {
	// Decode decodes one inbound binary frame. Malformed input fails
	// with a *DecodeError.
	Decode(data []byte) (*Container, error)

	// Encode encodes an outbound message.
	Encode(m Message) ([]byte, error)
}

// ProtobufCodec is the default Codec. Containers of type TypeMessage get
// their payload inflated according to the container's encoding.
type ProtobufCodec struct{}

// DefaultCodec is the codec sessions use unless configured otherwise.
var DefaultCodec Codec = ProtobufCodec{}

// Decode implements Codec.
func (ProtobufCodec) Decode(data []byte) (*Container, error) {
	c, err := DecodeContainer(data)
	if err != nil {
		return nil, NewDecodeError(len(data), err)
	}
	if c.Type != TypeMessage {
		return c, nil
	}

	payload, err := Inflate(c.Encoding, c.Raw)
	if err != nil {
		return nil, NewDecodeError(len(data), err)
	}
	c.Payload = payload
	return c, nil
}

// Encode implements Codec.
func (ProtobufCodec) Encode(m Message) ([]byte, error) {
	switch msg := m.(type) {
	case *Ack:
		return EncodeAck(msg), nil
	case *Container:
		return EncodeContainer(msg), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, m)
	}
}
