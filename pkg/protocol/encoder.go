package protocol

import (
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// Encoder appends protobuf wire-format fields to an internal buffer.
// Zero values are omitted, matching proto3 field presence.
type Encoder struct {
	buf []byte
}

// NewEncoder creates a new encoder with a default initial capacity.
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0, 64),
	}
}

// NewEncoderWithCap creates a new encoder with the specified initial capacity.
func NewEncoderWithCap(cap int) *Encoder {
	return &Encoder{
		buf: make([]byte, 0, cap),
	}
}

// Reset resets the encoder to empty state, reusing the underlying buffer.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the encoded bytes. The returned slice is valid until
// the next call to Reset or any Write method.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes currently encoded.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// WriteUvarint appends a varint field.
func (e *Encoder) WriteUvarint(num protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, v)
}

// WriteString appends a length-delimited string field.
func (e *Encoder) WriteString(num protowire.Number, s string) {
	if s == "" {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendString(e.buf, s)
}

// WriteBytes appends a length-delimited bytes field.
func (e *Encoder) WriteBytes(num protowire.Number, b []byte) {
	if len(b) == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, b)
}

// WriteMessage appends a nested message field built by fn.
func (e *Encoder) WriteMessage(num protowire.Number, fn func(*Encoder)) {
	nested := NewEncoder()
	fn(nested)
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, nested.Bytes())
}

// WriteStringMap appends a map<string, string> field as repeated entries,
// in key order so the same map always encodes to the same bytes.
func (e *Encoder) WriteStringMap(num protowire.Number, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := m[k]
		e.WriteMessage(num, func(entry *Encoder) {
			entry.WriteString(mapKeyField, k)
			entry.WriteString(mapValueField, v)
		})
	}
}
