package mocks

import (
	"context"

	"foodexpress/notification-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

// Notifier is a mock type for the Notifier type
type Notifier struct {
	mock.Mock
}

// Send provides a mock function with given fields: ctx, msg
func (_m *Notifier) Send(ctx context.Context, msg domain.NotificationMessage) error {
	ret := _m.Called(ctx, msg)
	return ret.Error(0)
}

// NewNotifier creates a new instance of Notifier. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewNotifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *Notifier {
	m := &Notifier{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
