package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of a map entry message.
const (
	mapKeyField   protowire.Number = 1
	mapValueField protowire.Number = 2
)

// Decoder walks the fields of a protobuf wire-format buffer.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder creates a new decoder from the given byte slice.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// EOF returns true if all bytes have been read.
func (d *Decoder) EOF() bool {
	return d.pos >= len(d.buf)
}

// Position returns the current read position.
func (d *Decoder) Position() int {
	return d.pos
}

// Next reads the next field tag.
func (d *Decoder) Next() (protowire.Number, protowire.Type, error) {
	num, typ, n := protowire.ConsumeTag(d.buf[d.pos:])
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	d.pos += n
	return num, typ, nil
}

// ReadUvarint reads the value of a varint field.
func (d *Decoder) ReadUvarint(typ protowire.Type) (uint64, error) {
	if typ != protowire.VarintType {
		return 0, fmt.Errorf("%w: got %d, want varint", ErrWireType, typ)
	}
	v, n := protowire.ConsumeVarint(d.buf[d.pos:])
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	d.pos += n
	return v, nil
}

// ReadBytes reads the value of a length-delimited field.
// The returned slice references the decoder's buffer; do not modify.
func (d *Decoder) ReadBytes(typ protowire.Type) ([]byte, error) {
	if typ != protowire.BytesType {
		return nil, fmt.Errorf("%w: got %d, want bytes", ErrWireType, typ)
	}
	b, n := protowire.ConsumeBytes(d.buf[d.pos:])
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	if len(b) > MaxFrameSize {
		return nil, ErrAllocationTooLarge
	}
	d.pos += n
	return b, nil
}

// ReadString reads the value of a length-delimited field as a string.
func (d *Decoder) ReadString(typ protowire.Type) (string, error) {
	b, err := d.ReadBytes(typ)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Skip advances past the value of a field the caller does not handle.
func (d *Decoder) Skip(num protowire.Number, typ protowire.Type) error {
	n := protowire.ConsumeFieldValue(num, typ, d.buf[d.pos:])
	if n < 0 {
		return protowire.ParseError(n)
	}
	d.pos += n
	return nil
}

// ReadStringMapEntry decodes one map<string, string> entry message.
func ReadStringMapEntry(entry []byte) (key, value string, err error) {
	d := NewDecoder(entry)
	for !d.EOF() {
		num, typ, err := d.Next()
		if err != nil {
			return "", "", err
		}
		switch num {
		case mapKeyField:
			key, err = d.ReadString(typ)
		case mapValueField:
			value, err = d.ReadString(typ)
		default:
			err = d.Skip(num, typ)
		}
		if err != nil {
			return "", "", err
		}
	}
	return key, value, nil
}
