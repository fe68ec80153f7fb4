package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// StoreInterface is a mock type for the StoreInterface type
type StoreInterface struct {
	mock.Mock
}

// MarkSent provides a mock function with given fields: ctx, trackingNumber
func (_m *StoreInterface) MarkSent(ctx context.Context, trackingNumber string) (bool, error) {
	ret := _m.Called(ctx, trackingNumber)
	return ret.Bool(0), ret.Error(1)
}

// Unmark provides a mock function with given fields: ctx, trackingNumber
func (_m *StoreInterface) Unmark(ctx context.Context, trackingNumber string) error {
	ret := _m.Called(ctx, trackingNumber)
	return ret.Error(0)
}

// NewStoreInterface creates a new instance of StoreInterface. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewStoreInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *StoreInterface {
	m := &StoreInterface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
