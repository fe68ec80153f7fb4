package mocks

import (
	"context"

	"foodexpress/order-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

// OrderServiceInterface is a mock type for the OrderServiceInterface type
type OrderServiceInterface struct {
	mock.Mock
}

// PlaceOrder provides a mock function with given fields: ctx, userID, input
func (_m *OrderServiceInterface) PlaceOrder(ctx context.Context, userID string, input domain.PlaceOrderInput) (*domain.PlacementResult, error) {
	ret := _m.Called(ctx, userID, input)

	var r0 *domain.PlacementResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.PlacementResult)
	}
	return r0, ret.Error(1)
}

// GetOrder provides a mock function with given fields: ctx, trackingNumber
func (_m *OrderServiceInterface) GetOrder(ctx context.Context, trackingNumber string) (*domain.Order, error) {
	ret := _m.Called(ctx, trackingNumber)

	var r0 *domain.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Order)
	}
	return r0, ret.Error(1)
}

// ListOrders provides a mock function with given fields: ctx, userID
func (_m *OrderServiceInterface) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	ret := _m.Called(ctx, userID)

	var r0 []domain.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Order)
	}
	return r0, ret.Error(1)
}

// UpdateStatus provides a mock function with given fields: ctx, trackingNumber, status
func (_m *OrderServiceInterface) UpdateStatus(ctx context.Context, trackingNumber string, status domain.OrderStatus) (*domain.Order, error) {
	ret := _m.Called(ctx, trackingNumber, status)

	var r0 *domain.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Order)
	}
	return r0, ret.Error(1)
}

// GetQRCode provides a mock function with given fields: ctx, trackingNumber
func (_m *OrderServiceInterface) GetQRCode(ctx context.Context, trackingNumber string) ([]byte, error) {
	ret := _m.Called(ctx, trackingNumber)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}
	return r0, ret.Error(1)
}

// NewOrderServiceInterface creates a new instance of OrderServiceInterface. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewOrderServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderServiceInterface {
	m := &OrderServiceInterface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
