package session

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/vango-dev/webcast/pkg/protocol"
)

// Config holds configuration for a single push session.
type Config struct {
	// Endpoint

	// URL is the base WebSocket endpoint (ws:// or wss://). Any query it
	// already carries is kept and overridden by ClientParams and Params.
	URL string

	// ClientParams are the base query parameters.
	ClientParams map[string]string

	// Params are merged over ClientParams; Params wins on key collision.
	Params map[string]string

	// Headers are added to the handshake request after the Cookie header,
	// so a "Cookie" entry here replaces the credential cookie.
	Headers map[string]string

	// Credentials produces the Cookie header value. Nil sends no cookie.
	Credentials CredentialSource

	// Timeouts

	// KeepaliveInterval is the time between keepalive frames.
	// Default: 10 seconds. The server's liveness check assumes 10 seconds;
	// other values are for tests.
	KeepaliveInterval time.Duration

	// HandshakeTimeout bounds the dial and WebSocket handshake.
	// Default: 0 (no timeout).
	HandshakeTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a frame.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// Limits

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: protocol.MaxFrameSize.
	MaxMessageSize int64

	// EventBuffer is the size of the event channel buffer.
	// Default: 256.
	EventBuffer int
}

// DefaultConfig returns a Config with sensible defaults and no endpoint.
func DefaultConfig() *Config {
	return &Config{
		KeepaliveInterval: protocol.KeepaliveInterval,
		WriteTimeout:      10 * time.Second,
		MaxMessageSize:    protocol.MaxFrameSize,
		EventBuffer:       256,
	}
}

// Clone returns a copy of the Config. Maps are copied.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.ClientParams = cloneMap(c.ClientParams)
	clone.Params = cloneMap(c.Params)
	clone.Headers = cloneMap(c.Headers)
	return &clone
}

// applyDefaults fills zero-valued fields from DefaultConfig.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.KeepaliveInterval <= 0 {
		c.KeepaliveInterval = d.KeepaliveInterval
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = d.EventBuffer
	}
}

// Endpoint returns the URL with ClientParams and Params merged into its
// query string. Keys are percent-encoded and sorted.
func (c *Config) Endpoint() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, c.URL)
	}

	q := u.Query()
	for k, v := range c.ClientParams {
		q.Set(k, v)
	}
	for k, v := range c.Params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Header returns the handshake headers: the credential cookie, then Headers.
// The credential source is consulted once per call.
func (c *Config) Header() (http.Header, error) {
	h := make(http.Header)
	if c.Credentials != nil {
		cookie, err := c.Credentials.Credentials()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCredentials, err)
		}
		if cookie != "" {
			h.Set("Cookie", cookie)
		}
	}
	for k, v := range c.Headers {
		h.Set(k, v)
	}
	return h, nil
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
