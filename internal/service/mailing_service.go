package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	netmail "net/mail"
	"os"
	"strings"

	"github.com/shaharia-lab/mailbatch/internal/notification"
	"github.com/shaharia-lab/mailbatch/internal/storage"
)

// Personalizer kinds accepted by SendRequest.Personalizer.
const (
	PersonalizerFields = "fields"
	PersonalizerHTML   = "html"
)

// Sender is the batch dispatch surface MailingService drives.
// *notification.Dispatcher satisfies it.
type Sender interface {
	SendPlain(ctx context.Context, recipients []notification.Recipient, subject, body string) (*notification.BatchResult, error)
	SendTemplated(ctx context.Context, recipients []notification.Recipient, subject, tmpl string, p notification.Personalizer) (*notification.BatchResult, error)
}

// SendRequest describes one batch. Exactly one of Body and TemplatePath is set.
type SendRequest struct {
	Subject string
	// Body is sent unchanged to every recipient.
	Body string
	// TemplatePath is an HTML template file rendered per recipient.
	TemplatePath string
	// Personalizer selects the template engine; defaults to PersonalizerFields.
	Personalizer string
	// FromDirectory sends to the active recipients of the directory instead
	// of Recipients.
	FromDirectory bool
	Recipients    []*notification.Contact
}

// MailingService runs batches and manages the recipient directory.
type MailingService interface {
	// Send resolves recipients and the body source, then runs one batch.
	Send(ctx context.Context, req SendRequest) (*notification.BatchResult, error)
	// AddRecipient adds a recipient to the directory.
	AddRecipient(ctx context.Context, rec *storage.RecipientRecord) error
	// ListRecipients lists the directory, optionally only active entries.
	ListRecipients(ctx context.Context, activeOnly bool) ([]*storage.RecipientRecord, error)
	// SetRecipientActive enables or disables a recipient.
	SetRecipientActive(ctx context.Context, email string, active bool) error
}

// mailingServiceImpl implements MailingService.
type mailingServiceImpl struct {
	sender Sender
	store  storage.RecipientStore
	logger *slog.Logger
}

// NewMailingService creates a new MailingService. store may be nil when the
// recipient directory is not in use.
func NewMailingService(sender Sender, store storage.RecipientStore, logger *slog.Logger) MailingService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &mailingServiceImpl{sender: sender, store: store, logger: logger}
}

func (s *mailingServiceImpl) Send(ctx context.Context, req SendRequest) (*notification.BatchResult, error) {
	if err := validateSendRequest(req); err != nil {
		return nil, err
	}

	recipients, err := s.resolveRecipients(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.TemplatePath == "" {
		result, err := s.sender.SendPlain(ctx, recipients, req.Subject, req.Body)
		return result, fromDispatchError(err)
	}

	tmpl, err := readTemplate(req.TemplatePath)
	if err != nil {
		return nil, err
	}
	p := newPersonalizer(req.Personalizer)
	s.logger.Debug("sending templated batch",
		"template", req.TemplatePath, "personalizer", personalizerKind(req.Personalizer),
		"recipients", len(recipients))
	result, err := s.sender.SendTemplated(ctx, recipients, req.Subject, tmpl, p)
	return result, fromDispatchError(err)
}

func validateSendRequest(req SendRequest) error {
	if strings.TrimSpace(req.Subject) == "" {
		return &ValidationError{Field: "subject", Message: "subject is required"}
	}
	switch {
	case req.Body == "" && req.TemplatePath == "":
		return &ValidationError{Field: "body", Message: "either a body or a template file is required"}
	case req.Body != "" && req.TemplatePath != "":
		return &ValidationError{Field: "body", Message: "body and template file are mutually exclusive"}
	}
	switch req.Personalizer {
	case "", PersonalizerFields, PersonalizerHTML:
	default:
		return &ValidationError{
			Field:   "personalizer",
			Message: fmt.Sprintf("unknown personalizer %q (want %q or %q)", req.Personalizer, PersonalizerFields, PersonalizerHTML),
		}
	}
	return nil
}

func (s *mailingServiceImpl) resolveRecipients(ctx context.Context, req SendRequest) ([]notification.Recipient, error) {
	if !req.FromDirectory {
		if len(req.Recipients) == 0 {
			return nil, &ValidationError{Field: "recipients", Message: "no recipients configured"}
		}
		return notification.Contacts(req.Recipients), nil
	}

	if s.store == nil {
		return nil, &ValidationError{Field: "recipients", Message: "recipient directory is not available"}
	}
	records, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading recipients: %w", err)
	}
	recipients := make([]notification.Recipient, 0, len(records))
	for _, r := range records {
		recipients = append(recipients, r.Contact())
	}
	return recipients, nil
}

func readTemplate(path string) (string, error) {
	//nolint:gosec // template path is supplied by the operator
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &NotFoundError{Resource: "template", ID: path}
		}
		return "", fmt.Errorf("reading template %q: %w", path, err)
	}
	return string(raw), nil
}

func personalizerKind(kind string) string {
	if kind == "" {
		return PersonalizerFields
	}
	return kind
}

func newPersonalizer(kind string) notification.Personalizer {
	if kind == PersonalizerHTML {
		return notification.NewHTMLTemplatePersonalizer()
	}
	return notification.FieldPersonalizer{}
}

func (s *mailingServiceImpl) AddRecipient(ctx context.Context, rec *storage.RecipientRecord) error {
	if rec == nil {
		return &ValidationError{Field: "recipient", Message: "recipient is required"}
	}
	addr, err := netmail.ParseAddress(rec.Email)
	if err != nil {
		return &ValidationError{Field: "email", Message: fmt.Sprintf("invalid address %q", rec.Email)}
	}
	rec.Email = addr.Address
	if rec.Name == "" {
		rec.Name = addr.Name
	}

	if err := s.store.Add(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return &ConflictError{Resource: "recipient", ID: rec.Email}
		}
		return err
	}
	s.logger.Info("recipient added", "email", rec.Email, "active", rec.Active)
	return nil
}

func (s *mailingServiceImpl) ListRecipients(ctx context.Context, activeOnly bool) ([]*storage.RecipientRecord, error) {
	if activeOnly {
		return s.store.ListActive(ctx)
	}
	return s.store.List(ctx)
}

func (s *mailingServiceImpl) SetRecipientActive(ctx context.Context, email string, active bool) error {
	if err := s.store.SetActive(ctx, email, active); err != nil {
		if errors.Is(err, storage.ErrRecipientNotFound) {
			return &NotFoundError{Resource: "recipient", ID: email}
		}
		return err
	}
	s.logger.Info("recipient updated", "email", email, "active", active)
	return nil
}
