package mocks

import (
	"context"

	"foodexpress/order-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

// OrderRepository is a mock type for the OrderRepository type
type OrderRepository struct {
	mock.Mock
}

// CreateOrder provides a mock function with given fields: ctx, order
func (_m *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	ret := _m.Called(ctx, order)

	if rf, ok := ret.Get(0).(func(context.Context, *domain.Order) error); ok {
		return rf(ctx, order)
	}
	return ret.Error(0)
}

// GetByTrackingNumber provides a mock function with given fields: ctx, trackingNumber
func (_m *OrderRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Order, error) {
	ret := _m.Called(ctx, trackingNumber)

	var r0 *domain.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Order)
	}
	return r0, ret.Error(1)
}

// GetByCartRef provides a mock function with given fields: ctx, userID, cartRef
func (_m *OrderRepository) GetByCartRef(ctx context.Context, userID string, cartRef string) (*domain.Order, error) {
	ret := _m.Called(ctx, userID, cartRef)

	var r0 *domain.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Order)
	}
	return r0, ret.Error(1)
}

// ListByUser provides a mock function with given fields: ctx, userID, limit
func (_m *OrderRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	ret := _m.Called(ctx, userID, limit)

	var r0 []domain.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Order)
	}
	return r0, ret.Error(1)
}

// UpdateStatus provides a mock function with given fields: ctx, trackingNumber, from, to
func (_m *OrderRepository) UpdateStatus(ctx context.Context, trackingNumber string, from domain.OrderStatus, to domain.OrderStatus) error {
	ret := _m.Called(ctx, trackingNumber, from, to)
	return ret.Error(0)
}

// GetQRCode provides a mock function with given fields: ctx, trackingNumber
func (_m *OrderRepository) GetQRCode(ctx context.Context, trackingNumber string) ([]byte, error) {
	ret := _m.Called(ctx, trackingNumber)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}
	return r0, ret.Error(1)
}

// SaveQRCode provides a mock function with given fields: ctx, trackingNumber, qr
func (_m *OrderRepository) SaveQRCode(ctx context.Context, trackingNumber string, qr []byte) error {
	ret := _m.Called(ctx, trackingNumber, qr)
	return ret.Error(0)
}

// NewOrderRepository creates a new instance of OrderRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewOrderRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderRepository {
	m := &OrderRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
