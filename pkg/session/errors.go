package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for session error conditions.
var (
	// ErrSessionClosed is returned when a write is attempted on a closed session.
	ErrSessionClosed = errors.New("session: session closed")

	// ErrInvalidURL is returned when the endpoint URL cannot be used.
	ErrInvalidURL = errors.New("session: invalid endpoint url")

	// ErrCredentials is returned when the credential source fails.
	ErrCredentials = errors.New("session: credentials unavailable")

	// ErrHandshake is returned when the server rejects the WebSocket upgrade.
	ErrHandshake = errors.New("session: handshake rejected")

	// ErrNoCookieJar is returned by JarCredentials without a jar or URL.
	ErrNoCookieJar = errors.New("session: no cookie jar")
)

// SessionError wraps an error with session context for debugging.
type SessionError struct {
	SessionID string
	Op        string // Operation that failed
	Err       error  // Underlying error
}

// Error returns the error message with session context.
func (e *SessionError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("session: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("session: %s: %s: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError creates a new SessionError.
func NewSessionError(sessionID, op string, err error) *SessionError {
	return &SessionError{
		SessionID: sessionID,
		Op:        op,
		Err:       err,
	}
}
