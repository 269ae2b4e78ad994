package protocol

import (
	"errors"
	"fmt"
)

// Common decoding errors.
var (
	ErrFrameTooLarge       = errors.New("protocol: frame too large")
	ErrWireType            = errors.New("protocol: unexpected wire type")
	ErrAllocationTooLarge  = errors.New("protocol: allocation size exceeds limit")
	ErrCollectionTooLarge  = errors.New("protocol: collection count exceeds limit")
	ErrPayloadTooLarge     = errors.New("protocol: decompressed payload exceeds limit")
	ErrUnsupportedEncoding = errors.New("protocol: unsupported payload encoding")
	ErrUnknownKind         = errors.New("protocol: unknown message kind")
	ErrNotAck              = errors.New("protocol: message is not an ack")
	ErrNilContainer        = errors.New("protocol: codec returned no container")
)

// DecodeError reports a frame that could not be turned into a Container.
// Size is the length of the offending frame; Err is the underlying cause.
type DecodeError struct {
	Size int
	Err  error
}

// Error returns the error message with the frame size.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("protocol: decode %d-byte frame: %v", e.Size, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError wraps err as a DecodeError for a frame of the given size.
// An err that already is a *DecodeError is returned unchanged.
func NewDecodeError(size int, err error) *DecodeError {
	var de *DecodeError
	if errors.As(err, &de) {
		return de
	}
	return &DecodeError{Size: size, Err: err}
}
