// Package notification sends one subject to a list of recipients over a single
// transport session, recording per-recipient outcomes in a BatchResult.
package notification

import "context"

// Content types and charset applied to every outgoing message.
const (
	ContentTypeHTML = "text/html"
	CharsetUTF8     = "UTF-8"
)

// Message is the content delivered to one recipient. It lives only for the
// duration of a single send attempt.
type Message struct {
	FromAddress string
	FromName    string
	To          string
	Subject     string
	Body        string
}

// Transport opens sessions against a delivery backend.
type Transport interface {
	// Name returns the transport identifier (e.g. "smtp").
	Name() string
	// Open establishes a session that is reused for every message of a batch.
	Open(ctx context.Context) (Session, error)
}

// Session is one open connection to the delivery backend.
type Session interface {
	// Send delivers a single message. An error wrapping *SessionError means the
	// session itself is unusable; any other error concerns this message only.
	Send(ctx context.Context, msg *Message) error
	// Close releases the connection.
	Close() error
}
