package mocks

import (
	"context"

	"foodexpress/order-svc/internal/client"

	"github.com/stretchr/testify/mock"
)

// RestaurantClient is a mock type for the RestaurantClient type
type RestaurantClient struct {
	mock.Mock
}

// GetRestaurant provides a mock function with given fields: ctx, restaurantID
func (_m *RestaurantClient) GetRestaurant(ctx context.Context, restaurantID string) (*client.Restaurant, error) {
	ret := _m.Called(ctx, restaurantID)

	var r0 *client.Restaurant
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*client.Restaurant)
	}
	return r0, ret.Error(1)
}

// NewRestaurantClient creates a new instance of RestaurantClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewRestaurantClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *RestaurantClient {
	m := &RestaurantClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
