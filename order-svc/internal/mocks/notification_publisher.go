package mocks

import (
	"context"

	"foodexpress/order-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

// NotificationPublisher is a mock type for the NotificationPublisher type
type NotificationPublisher struct {
	mock.Mock
}

// PublishOrderPlaced provides a mock function with given fields: ctx, msg
func (_m *NotificationPublisher) PublishOrderPlaced(ctx context.Context, msg domain.NotificationMessage) error {
	ret := _m.Called(ctx, msg)
	return ret.Error(0)
}

// NewNotificationPublisher creates a new instance of NotificationPublisher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewNotificationPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *NotificationPublisher {
	m := &NotificationPublisher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
