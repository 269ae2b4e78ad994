package protocol

import (
	"testing"
)

// FuzzDecodeContainer tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeContainer(f *testing.F) {
	f.Add(Keepalive())
	f.Add(EncodeAck(NewAck(42)))
	f.Add(EncodeContainer(&Container{
		SeqID:   1,
		ID:      2,
		Method:  "push",
		Headers: map[string]string{"k": "v"},
		Type:    TypeMessage,
		Raw:     []byte("payload"),
	}))
	f.Add([]byte{0xFF, 0xFF, 0xFF})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = DefaultCodec.Decode(data)
	})
}

// FuzzDecodeAck tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeAck(f *testing.F) {
	f.Add(EncodeAck(NewAck(1)))
	f.Add([]byte{0x10})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = DecodeAck(data)
	})
}
