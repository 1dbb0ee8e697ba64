package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/notifier/internal/trigger"
)

// MockTriggerStore is a mock implementation of storage.TriggerStore.
type MockTriggerStore struct {
	mock.Mock
}

//nolint:revive
func (m *MockTriggerStore) Load(ctx context.Context) ([]*trigger.Definition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*trigger.Definition), args.Error(1)
}

//nolint:revive
func (m *MockTriggerStore) Save(ctx context.Context, defs []*trigger.Definition) error {
	args := m.Called(ctx, defs)
	return args.Error(0)
}
