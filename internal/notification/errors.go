package notification

import "fmt"

// ArgumentError is returned before any I/O when a dispatch call is given
// missing or malformed input.
type ArgumentError struct {
	Field   string
	Message string
}

func (e *ArgumentError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Message)
	}
	return e.Message
}

// SessionError means the transport session could not be opened or failed in a
// way not attributable to a single recipient. It aborts the batch.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("transport session %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// DeliveryError is a failure to compose or send one message. The dispatcher
// records it in the BatchResult and moves on.
type DeliveryError struct {
	Address string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s: %v", e.Address, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
