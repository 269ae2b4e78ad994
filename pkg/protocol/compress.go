package protocol

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Payload encodings carried in the container's encoding field.
const (
	EncodingNone     = ""
	EncodingProtobuf = "pb"
	EncodingGzip     = "gzip"
)

// Inflate returns the decoded payload for raw bytes in the given encoding.
// The result is never nil, so an empty payload is still a payload.
func Inflate(encoding string, raw []byte) ([]byte, error) {
	switch encoding {
	case EncodingNone, EncodingProtobuf:
		if raw == nil {
			return []byte{}, nil
		}
		return raw, nil

	case EncodingGzip:
		return gunzip(raw)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}
}

func gunzip(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, MaxPayloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if len(out) > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}
	return out, nil
}

// Gzip compresses a payload for a container with EncodingGzip.
func Gzip(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return buf.Bytes(), nil
}
