package mocks

import (
	"context"

	"foodexpress/order-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

// CartClient is a mock type for the CartClient type
type CartClient struct {
	mock.Mock
}

// GetCart provides a mock function with given fields: ctx, userID
func (_m *CartClient) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	ret := _m.Called(ctx, userID)

	if rf, ok := ret.Get(0).(func(context.Context, string) (*domain.Cart, error)); ok {
		return rf(ctx, userID)
	}

	var r0 *domain.Cart
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Cart)
	}
	return r0, ret.Error(1)
}

// ClearCart provides a mock function with given fields: ctx, userID
func (_m *CartClient) ClearCart(ctx context.Context, userID string) error {
	ret := _m.Called(ctx, userID)
	return ret.Error(0)
}

// NewCartClient creates a new instance of CartClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewCartClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *CartClient {
	m := &CartClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
