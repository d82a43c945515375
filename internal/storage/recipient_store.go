package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shaharia-lab/mailbatch/internal/notification"
)

var (
	// ErrDuplicateEmail is returned when adding an address that already exists.
	ErrDuplicateEmail = errors.New("recipient email already exists")
	// ErrRecipientNotFound is returned when no recipient matches an address.
	ErrRecipientNotFound = errors.New("recipient not found")
)

// RecipientRecord is a row of the recipient directory.
type RecipientRecord struct {
	ID         int64             `json:"id"`
	Username   string            `json:"username"`
	Email      string            `json:"email"`
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Active     bool              `json:"active"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Contact converts the record into a dispatchable recipient.
func (r *RecipientRecord) Contact() *notification.Contact {
	return &notification.Contact{
		Email:      r.Email,
		Name:       r.Name,
		Username:   r.Username,
		Attributes: r.Attributes,
	}
}

// RecipientStore defines the interface for the recipient directory.
type RecipientStore interface {
	// Add inserts a recipient and fills in its ID and CreatedAt.
	// Returns ErrDuplicateEmail if the address is taken (case-insensitive).
	Add(ctx context.Context, rec *RecipientRecord) error
	// List returns every recipient ordered by ID.
	List(ctx context.Context) ([]*RecipientRecord, error)
	// ListActive returns active recipients ordered by ID.
	ListActive(ctx context.Context) ([]*RecipientRecord, error)
	// SetActive toggles a recipient. Returns ErrRecipientNotFound for unknown addresses.
	SetActive(ctx context.Context, email string, active bool) error
	// Count returns the number of recipients.
	Count(ctx context.Context) (int, error)
}
