package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPTransport opens go-mail client sessions against one SMTP server.
type SMTPTransport struct {
	config SMTPConfig
}

// NewSMTPTransport creates a new SMTPTransport with the given configuration.
func NewSMTPTransport(config SMTPConfig) *SMTPTransport {
	return &SMTPTransport{config: config}
}

// Name returns the transport identifier.
func (t *SMTPTransport) Name() string { return "smtp" }

// Open dials the server and authenticates. The returned session keeps the
// connection until Close.
func (t *SMTPTransport) Open(ctx context.Context) (Session, error) {
	c, err := mail.NewClient(t.config.Host, t.clientOptions()...)
	if err != nil {
		return nil, &SessionError{Op: "configure", Err: err}
	}
	if err := c.DialWithContext(ctx); err != nil {
		return nil, &SessionError{Op: "dial", Err: err}
	}
	return &smtpSession{client: c}, nil
}

func (t *SMTPTransport) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(t.config.Port),
		mail.WithTLSPolicy(tlsPolicyFromEncryption(t.config.Encryption)),
	}
	if t.config.Encryption == EncryptionSSLTLS {
		opts = append(opts, mail.WithSSL())
	}
	if t.config.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(t.config.Timeout))
	}
	// Local relays often accept unauthenticated mail.
	if t.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.config.Username),
			mail.WithPassword(t.config.Password),
		)
	}
	return opts
}

// tlsPolicyFromEncryption converts the encryption string to a go-mail TLSPolicy.
func tlsPolicyFromEncryption(enc string) mail.TLSPolicy {
	switch enc {
	case EncryptionSSLTLS, EncryptionSTARTTLS:
		return mail.TLSMandatory
	case "":
		return mail.TLSOpportunistic
	default:
		return mail.NoTLS
	}
}

type smtpSession struct {
	client *mail.Client
}

// Send writes msg over the open connection. Connection-check failures are
// reported as *SessionError; everything else belongs to the recipient.
func (s *smtpSession) Send(_ context.Context, msg *Message) error {
	m, err := buildMsg(msg)
	if err != nil {
		return err
	}
	if err := s.client.Send(m); err != nil {
		var sendErr *mail.SendError
		if errors.As(err, &sendErr) && sendErr.Reason == mail.ErrConnCheck {
			return &SessionError{Op: "send", Err: err}
		}
		return err
	}
	return nil
}

func (s *smtpSession) Close() error {
	return s.client.Close()
}

// buildMsg converts a Message into an HTML, UTF-8 go-mail message.
func buildMsg(msg *Message) (*mail.Msg, error) {
	m := mail.NewMsg(mail.WithCharset(mail.CharsetUTF8))
	if msg.FromName != "" {
		if err := m.FromFormat(msg.FromName, msg.FromAddress); err != nil {
			return nil, fmt.Errorf("invalid from address: %w", err)
		}
	} else if err := m.From(msg.FromAddress); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.Body)
	return m, nil
}
