package mocks

import (
	"context"

	"foodexpress/cart-svc/internal/client"

	"github.com/stretchr/testify/mock"
)

// Catalog is a mock type for the Catalog type
type Catalog struct {
	mock.Mock
}

// GetRestaurant provides a mock function with given fields: ctx, restaurantID
func (_m *Catalog) GetRestaurant(ctx context.Context, restaurantID string) (*client.Restaurant, error) {
	ret := _m.Called(ctx, restaurantID)

	var r0 *client.Restaurant
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*client.Restaurant)
	}
	return r0, ret.Error(1)
}

// CheckUser provides a mock function with given fields: ctx, userID
func (_m *Catalog) CheckUser(ctx context.Context, userID string) error {
	ret := _m.Called(ctx, userID)
	return ret.Error(0)
}

// NewCatalog creates a new instance of Catalog. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewCatalog(t interface {
	mock.TestingT
	Cleanup(func())
}) *Catalog {
	m := &Catalog{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
