package protocol

import "time"

// KeepaliveInterval is the cadence at which clients send Keepalive.
const KeepaliveInterval = 10 * time.Second

// keepalive is a container carrying only type "hb".
var keepalive = []byte{0x3A, 0x02, 0x68, 0x62}

// Keepalive returns the fixed keepalive frame. The server expects no reply.
// Callers get their own copy.
func Keepalive() []byte {
	b := make([]byte, len(keepalive))
	copy(b, keepalive)
	return b
}

// IsKeepalive reports whether data is the keepalive frame.
func IsKeepalive(data []byte) bool {
	return string(data) == string(keepalive)
}
