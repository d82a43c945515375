package notification_test

import (
	"context"
	"errors"
	"sync"

	"github.com/shaharia-lab/mailbatch/internal/notification"
)

// --- stub transport ---

type stubTransport struct {
	mu      sync.Mutex
	openErr error
	// onOpen runs before Open returns; a non-nil result replaces openErr.
	onOpen  func(ctx context.Context) error
	session *stubSession
	opens   int
}

func newStubTransport() *stubTransport {
	return &stubTransport{session: &stubSession{failFor: map[string]error{}}}
}

func (t *stubTransport) Name() string { return "stub" }

func (t *stubTransport) Open(ctx context.Context) (notification.Session, error) {
	t.mu.Lock()
	t.opens++
	t.mu.Unlock()
	if t.onOpen != nil {
		if err := t.onOpen(ctx); err != nil {
			return nil, err
		}
	}
	if t.openErr != nil {
		return nil, t.openErr
	}
	return t.session, nil
}

type stubSession struct {
	mu      sync.Mutex
	failFor map[string]error
	// sessionErrAt breaks the session on the n-th send (1-based) when > 0.
	sessionErrAt int
	// onSend runs after each recorded send attempt.
	onSend func(n int)
	sent   []*notification.Message
	calls  int
	closed int
}

func (s *stubSession) Send(_ context.Context, msg *notification.Message) error {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()

	if s.onSend != nil {
		defer s.onSend(n)
	}
	if s.sessionErrAt > 0 && n == s.sessionErrAt {
		return &notification.SessionError{Op: "send", Err: errors.New("connection reset")}
	}
	if err, ok := s.failFor[msg.To]; ok {
		return err
	}
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

func (s *stubSession) Close() error {
	s.mu.Lock()
	s.closed++
	s.mu.Unlock()
	return nil
}

func contacts(addrs ...string) []notification.Recipient {
	out := make([]notification.Recipient, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, &notification.Contact{Email: a})
	}
	return out
}

func testConfig() notification.DispatchConfig {
	return notification.DispatchConfig{FromAddress: "noreply@example.com", FromName: "Mailer"}
}

// ptrRecipient is a caller-defined Recipient whose methods dereference the
// receiver.
type ptrRecipient struct {
	email string
}

func (p *ptrRecipient) EmailAddress() string { return p.email }

func (p *ptrRecipient) TemplateFields() map[string]any {
	return map[string]any{"Email": p.email}
}

// panicRecipient fails to produce an address.
type panicRecipient struct{}

func (panicRecipient) EmailAddress() string           { panic("address lookup failed") }
func (panicRecipient) TemplateFields() map[string]any { return nil }
