package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// PlacementLock is a mock type for the PlacementLock type
type PlacementLock struct {
	mock.Mock
}

// Acquire provides a mock function with given fields: ctx, userID
func (_m *PlacementLock) Acquire(ctx context.Context, userID string) (string, bool, error) {
	ret := _m.Called(ctx, userID)
	return ret.String(0), ret.Bool(1), ret.Error(2)
}

// Release provides a mock function with given fields: ctx, userID, token
func (_m *PlacementLock) Release(ctx context.Context, userID string, token string) error {
	ret := _m.Called(ctx, userID, token)
	return ret.Error(0)
}

// NewPlacementLock creates a new instance of PlacementLock. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewPlacementLock(t interface {
	mock.TestingT
	Cleanup(func())
}) *PlacementLock {
	m := &PlacementLock{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
