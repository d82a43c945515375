package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/mailbatch/internal/storage"
)

func newRecipientStore(t *testing.T) *storage.SQLiteRecipientStore {
	t.Helper()
	db, err := storage.NewSQLiteDB(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return storage.NewSQLiteRecipientStore(db)
}

func TestSQLiteRecipientStore(t *testing.T) {
	store := newRecipientStore(t)
	ctx := context.Background()

	t.Run("add and list", func(t *testing.T) {
		rec := &storage.RecipientRecord{
			Username:   "ann",
			Email:      "ann@example.com",
			Name:       "Ann",
			Attributes: map[string]string{"Plan": "pro"},
			Active:     true,
		}
		require.NoError(t, store.Add(ctx, rec))
		assert.NotZero(t, rec.ID)
		assert.False(t, rec.CreatedAt.IsZero())

		require.NoError(t, store.Add(ctx, &storage.RecipientRecord{Email: "bob@example.com"}))

		list, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "ann@example.com", list[0].Email)
		assert.Equal(t, "Ann", list[0].Name)
		assert.Equal(t, "pro", list[0].Attributes["Plan"])
		assert.True(t, list[0].Active)
		assert.Nil(t, list[1].Attributes)
		assert.False(t, list[1].Active)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := store.Add(ctx, &storage.RecipientRecord{Email: "ANN@example.com"})
		assert.ErrorIs(t, err, storage.ErrDuplicateEmail)
	})

	t.Run("list active", func(t *testing.T) {
		active, err := store.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "ann@example.com", active[0].Email)
	})

	t.Run("set active", func(t *testing.T) {
		require.NoError(t, store.SetActive(ctx, "bob@example.com", true))
		active, err := store.ListActive(ctx)
		require.NoError(t, err)
		assert.Len(t, active, 2)

		err = store.SetActive(ctx, "nobody@example.com", true)
		assert.ErrorIs(t, err, storage.ErrRecipientNotFound)
	})

	t.Run("count", func(t *testing.T) {
		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestRecipientRecord_Contact(t *testing.T) {
	rec := &storage.RecipientRecord{Username: "ann", Email: "ann@example.com", Name: "Ann"}
	c := rec.Contact()
	assert.Equal(t, "ann@example.com", c.EmailAddress())
	assert.Equal(t, "ann", c.TemplateFields()["Username"])
}

func TestSeedRecipients(t *testing.T) {
	store := newRecipientStore(t)
	ctx := context.Background()

	n, err := storage.SeedRecipients(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 5, "bob_wilson is seeded inactive")

	n, err = storage.SeedRecipients(ctx, store)
	require.NoError(t, err)
	assert.Zero(t, n, "seeding a populated directory is a no-op")
}
