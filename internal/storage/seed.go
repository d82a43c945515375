package storage

import (
	"context"
	"fmt"
	"time"
)

// demoRecipients is the directory a fresh installation is seeded with.
var demoRecipients = []struct {
	username string
	email    string
	ageDays  int
	active   bool
}{
	{"admin", "admin@example.com", 30, true},
	{"john_doe", "john.doe@example.com", 25, true},
	{"jane_smith", "jane.smith@example.com", 20, true},
	{"bob_wilson", "bob.wilson@example.com", 15, false},
	{"alice_brown", "alice.brown@example.com", 10, true},
	{"test_user", "test@example.com", 5, true},
}

// SeedRecipients fills an empty directory with demo recipients. It does
// nothing when any recipient exists and reports how many rows it inserted.
func SeedRecipients(ctx context.Context, store RecipientStore) (int, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	for i, d := range demoRecipients {
		rec := &RecipientRecord{
			Username:  d.username,
			Email:     d.email,
			Active:    d.active,
			CreatedAt: now.AddDate(0, 0, -d.ageDays),
		}
		if err := store.Add(ctx, rec); err != nil {
			return i, fmt.Errorf("seeding %q: %w", d.email, err)
		}
	}
	return len(demoRecipients), nil
}
