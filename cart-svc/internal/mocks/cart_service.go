package mocks

import (
	"context"

	"foodexpress/cart-svc/internal/domain"
	"foodexpress/cart-svc/internal/service"

	"github.com/stretchr/testify/mock"
)

// CartServiceInterface is a mock type for the CartServiceInterface type
type CartServiceInterface struct {
	mock.Mock
}

func (_m *CartServiceInterface) cart(ret mock.Arguments) (*domain.Cart, error) {
	var r0 *domain.Cart
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Cart)
	}
	return r0, ret.Error(1)
}

// AddItem provides a mock function with given fields: ctx, userID, input
func (_m *CartServiceInterface) AddItem(ctx context.Context, userID string, input service.AddItemInput) (*domain.Cart, error) {
	return _m.cart(_m.Called(ctx, userID, input))
}

// GetCart provides a mock function with given fields: ctx, userID
func (_m *CartServiceInterface) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return _m.cart(_m.Called(ctx, userID))
}

// UpdateItemQuantity provides a mock function with given fields: ctx, userID, menuItemID, quantity
func (_m *CartServiceInterface) UpdateItemQuantity(ctx context.Context, userID, menuItemID string, quantity int) (*domain.Cart, error) {
	return _m.cart(_m.Called(ctx, userID, menuItemID, quantity))
}

// RemoveItem provides a mock function with given fields: ctx, userID, menuItemID
func (_m *CartServiceInterface) RemoveItem(ctx context.Context, userID, menuItemID string) (*domain.Cart, error) {
	return _m.cart(_m.Called(ctx, userID, menuItemID))
}

// ClearCart provides a mock function with given fields: ctx, userID
func (_m *CartServiceInterface) ClearCart(ctx context.Context, userID string) error {
	ret := _m.Called(ctx, userID)
	return ret.Error(0)
}

// NewCartServiceInterface creates a new instance of CartServiceInterface. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewCartServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *CartServiceInterface {
	m := &CartServiceInterface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
