package protocol

// Allocation limits to prevent DoS attacks via malicious length prefixes
// or compression bombs.
const (
	// MaxFrameSize is the largest inbound frame the decoder accepts (4MB).
	MaxFrameSize = 4 * 1024 * 1024

	// MaxPayloadSize caps the size of a payload after decompression (16MB).
	MaxPayloadSize = 16 * 1024 * 1024

	// MaxHeaderCount is the maximum number of header entries in a container.
	MaxHeaderCount = 1024
)
