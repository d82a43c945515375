package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteRecipientStore implements RecipientStore backed by SQLite.
type SQLiteRecipientStore struct {
	db *sql.DB
}

// NewSQLiteRecipientStore returns a new SQLiteRecipientStore.
func NewSQLiteRecipientStore(db *sql.DB) *SQLiteRecipientStore {
	return &SQLiteRecipientStore{db: db}
}

// Add inserts rec. The email column is unique without regard to case.
func (s *SQLiteRecipientStore) Add(ctx context.Context, rec *RecipientRecord) error {
	attrs, err := json.Marshal(nonNilAttributes(rec.Attributes))
	if err != nil {
		return fmt.Errorf("encoding attributes: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO recipients (username, email, name, attributes, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO NOTHING`,
		rec.Username, rec.Email, rec.Name, string(attrs), rec.Active, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting recipient: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inserting recipient: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateEmail, rec.Email)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading recipient id: %w", err)
	}
	rec.ID = id
	return nil
}

// List returns every recipient.
func (s *SQLiteRecipientStore) List(ctx context.Context) ([]*RecipientRecord, error) {
	return s.query(ctx, `
		SELECT id, username, email, name, attributes, is_active, created_at
		FROM recipients
		ORDER BY id ASC`)
}

// ListActive returns active recipients in insertion order.
func (s *SQLiteRecipientStore) ListActive(ctx context.Context) ([]*RecipientRecord, error) {
	return s.query(ctx, `
		SELECT id, username, email, name, attributes, is_active, created_at
		FROM recipients
		WHERE is_active = 1
		ORDER BY id ASC`)
}

// SetActive updates the is_active flag for email.
func (s *SQLiteRecipientStore) SetActive(ctx context.Context, email string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE recipients SET is_active = ? WHERE email = ?", active, email)
	if err != nil {
		return fmt.Errorf("updating recipient %q: %w", email, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating recipient %q: %w", email, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRecipientNotFound, email)
	}
	return nil
}

// Count returns the total number of recipients.
func (s *SQLiteRecipientStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recipients").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting recipients: %w", err)
	}
	return n, nil
}

func (s *SQLiteRecipientStore) query(ctx context.Context, q string) ([]*RecipientRecord, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying recipients: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	records := make([]*RecipientRecord, 0)
	for rows.Next() {
		rec, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recipient rows: %w", err)
	}
	return records, nil
}

func scanRecipient(rows *sql.Rows) (*RecipientRecord, error) {
	var (
		rec   RecipientRecord
		attrs string
	)
	if err := rows.Scan(&rec.ID, &rec.Username, &rec.Email, &rec.Name,
		&attrs, &rec.Active, &rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("scanning recipient row: %w", err)
	}
	if err := json.Unmarshal([]byte(attrs), &rec.Attributes); err != nil {
		return nil, fmt.Errorf("decoding attributes for %q: %w", rec.Email, err)
	}
	if len(rec.Attributes) == 0 {
		rec.Attributes = nil
	}
	return &rec, nil
}

func nonNilAttributes(attrs map[string]string) map[string]string {
	if attrs == nil {
		return map[string]string{}
	}
	return attrs
}
