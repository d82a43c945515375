package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/mailbatch/internal/storage"
)

// MockRecipientStore is a mock implementation of storage.RecipientStore.
type MockRecipientStore struct {
	mock.Mock
}

//nolint:revive
func (m *MockRecipientStore) Add(ctx context.Context, rec *storage.RecipientRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

//nolint:revive
func (m *MockRecipientStore) List(ctx context.Context) ([]*storage.RecipientRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.RecipientRecord), args.Error(1)
}

//nolint:revive
func (m *MockRecipientStore) ListActive(ctx context.Context) ([]*storage.RecipientRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.RecipientRecord), args.Error(1)
}

//nolint:revive
func (m *MockRecipientStore) SetActive(ctx context.Context, email string, active bool) error {
	args := m.Called(ctx, email, active)
	return args.Error(0)
}

//nolint:revive
func (m *MockRecipientStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
