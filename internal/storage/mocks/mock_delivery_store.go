package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/notifier/internal/storage"
)

// MockDeliveryStore is a mock implementation of storage.DeliveryStore.
type MockDeliveryStore struct {
	mock.Mock
}

//nolint:revive
func (m *MockDeliveryStore) LogDelivery(ctx context.Context, entry storage.DeliveryLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

//nolint:revive
func (m *MockDeliveryStore) ListDeliveries(ctx context.Context, limit int) ([]storage.DeliveryLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.DeliveryLogEntry), args.Error(1)
}

//nolint:revive
func (m *MockDeliveryStore) PruneDeliveries(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
