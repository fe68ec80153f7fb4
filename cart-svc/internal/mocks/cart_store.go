package mocks

import (
	"context"

	"foodexpress/cart-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

// CartStore is a mock type for the CartStore type
type CartStore struct {
	mock.Mock
}

// Load provides a mock function with given fields: ctx, userID
func (_m *CartStore) Load(ctx context.Context, userID string) (*domain.Cart, error) {
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

// Save provides a mock function with given fields: ctx, cart
func (_m *CartStore) Save(ctx context.Context, cart *domain.Cart) error {
	ret := _m.Called(ctx, cart)

	if rf, ok := ret.Get(0).(func(context.Context, *domain.Cart) error); ok {
		return rf(ctx, cart)
	}
	return ret.Error(0)
}

// Delete provides a mock function with given fields: ctx, userID
func (_m *CartStore) Delete(ctx context.Context, userID string) error {
	ret := _m.Called(ctx, userID)
	return ret.Error(0)
}

// NewCartStore creates a new instance of CartStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewCartStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *CartStore {
	m := &CartStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
