package session

import (
	"net/http"
	"net/url"
	"strings"
)

// CredentialSource produces the serialized session credential sent as the
// Cookie header of the handshake.
type CredentialSource interface {
	Credentials() (string, error)
}

// CredentialFunc adapts a function to CredentialSource.
type CredentialFunc func() (string, error)

// Credentials implements CredentialSource.
func (f CredentialFunc) Credentials() (string, error) { return f() }

// StaticCredentials is a fixed cookie string.
type StaticCredentials string

// Credentials implements CredentialSource.
func (c StaticCredentials) Credentials() (string, error) { return string(c), nil }

// JarCredentials serializes the cookies a jar holds for URL.
// WebSocket schemes are mapped to their HTTP equivalents before the lookup,
// since cookie jars only answer for http and https.
type JarCredentials struct {
	Jar http.CookieJar
	URL *url.URL
}

// Credentials implements CredentialSource.
func (c JarCredentials) Credentials() (string, error) {
	if c.Jar == nil || c.URL == nil {
		return "", ErrNoCookieJar
	}

	u := *c.URL
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	}

	cookies := c.Jar.Cookies(&u)
	parts := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; "), nil
}
