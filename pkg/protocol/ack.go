package protocol

// Ack is sent by the client for every container that carries a positive ID.
// On the wire it is {id: ID, type: "ack"}.
type Ack struct {
	ID uint64
}

// Kind implements Message.
func (a *Ack) Kind() MessageKind { return KindAck }

// EncodeAck encodes an Ack to bytes.
func EncodeAck(ack *Ack) []byte {
	e := NewEncoderWithCap(16)
	EncodeAckTo(e, ack)
	return e.Bytes()
}

// EncodeAckTo encodes an Ack using the provided encoder.
func EncodeAckTo(e *Encoder, ack *Ack) {
	e.WriteUvarint(fieldID, ack.ID)
	e.WriteString(fieldType, TypeAck)
}

// DecodeAck decodes an Ack from bytes.
func DecodeAck(data []byte) (*Ack, error) {
	d := NewDecoder(data)
	return DecodeAckFrom(d)
}

// DecodeAckFrom decodes an Ack from a decoder.
// Returns ErrNotAck if the message is not tagged as an ack.
func DecodeAckFrom(d *Decoder) (*Ack, error) {
	var (
		ack Ack
		typ string
	)
	for !d.EOF() {
		num, wt, err := d.Next()
		if err != nil {
			return nil, err
		}
		switch num {
		case fieldID:
			ack.ID, err = d.ReadUvarint(wt)
		case fieldType:
			typ, err = d.ReadString(wt)
		default:
			err = d.Skip(num, wt)
		}
		if err != nil {
			return nil, err
		}
	}
	if typ != TypeAck {
		return nil, ErrNotAck
	}
	return &ack, nil
}

// NewAck creates a new Ack for the given container ID.
func NewAck(id uint64) *Ack {
	return &Ack{ID: id}
}
