package commands_test

import (
	"context"
	"testing"
	"time"

	"tracker/internal/core/application/usecases/commands"
	"tracker/internal/core/domain/model/kernel"
	"tracker/internal/core/domain/model/order"
	"tracker/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllActive(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockSimulator struct{ mock.Mock }

func (m *MockSimulator) Register(o *order.Order) error {
	args := m.Called(o)
	return args.Error(0)
}

func (m *MockSimulator) Announce(o *order.Order) {
	m.Called(o)
}

func (m *MockSimulator) Activate(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockSimulator) Deactivate(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

type MockRouteProvider struct{ mock.Mock }

func (m *MockRouteProvider) FetchRoute(
	ctx context.Context,
	source kernel.GeoPoint,
	destination kernel.GeoPoint,
) ([]kernel.GeoPoint, error) {
	args := m.Called(ctx, source, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.GeoPoint), args.Error(1)
}

func mustPoint(t *testing.T, lat, lon float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	return p
}

func storedOrder(t *testing.T, id string) *order.Order {
	t.Helper()
	o, err := order.NewOrder(id, nil, "", time.Now(),
		mustPoint(t, 17.3850, 78.4867),
		mustPoint(t, 17.4065, 78.4772))
	require.NoError(t, err)
	return o
}
