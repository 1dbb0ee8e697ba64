package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/notifier/internal/service"
	"github.com/shaharia-lab/notifier/internal/storage"
	"github.com/shaharia-lab/notifier/internal/trigger"
)

// MockTriggerService is a mock implementation of service.TriggerService.
type MockTriggerService struct {
	mock.Mock
}

//nolint:revive
func (m *MockTriggerService) Register(ctx context.Context, reg *trigger.Registration) (*trigger.Definition, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trigger.Definition), args.Error(1)
}

//nolint:revive
func (m *MockTriggerService) Notify(ctx context.Context, name string, payload map[string]any) service.Result {
	args := m.Called(ctx, name, payload)
	return args.Get(0).(service.Result)
}

//nolint:revive
func (m *MockTriggerService) List(ctx context.Context) []*trigger.Definition {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*trigger.Definition)
}

//nolint:revive
func (m *MockTriggerService) Get(ctx context.Context, name string) (*trigger.Definition, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trigger.Definition), args.Error(1)
}

//nolint:revive
func (m *MockTriggerService) Deliveries(ctx context.Context, limit int) ([]storage.DeliveryLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.DeliveryLogEntry), args.Error(1)
}
