package mocks

import (
	"context"
	"time"

	"foodexpress/order-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

// FollowUpQueue is a mock type for the FollowUpQueue type
type FollowUpQueue struct {
	mock.Mock
}

// EnqueueFollowUp provides a mock function with given fields: ctx, f
func (_m *FollowUpQueue) EnqueueFollowUp(ctx context.Context, f domain.FollowUp) error {
	ret := _m.Called(ctx, f)
	return ret.Error(0)
}

// ClaimDueFollowUps provides a mock function with given fields: ctx, now, leaseUntil, limit
func (_m *FollowUpQueue) ClaimDueFollowUps(ctx context.Context, now time.Time, leaseUntil time.Time, limit int) ([]domain.FollowUp, error) {
	ret := _m.Called(ctx, now, leaseUntil, limit)

	var r0 []domain.FollowUp
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.FollowUp)
	}
	return r0, ret.Error(1)
}

// CompleteFollowUp provides a mock function with given fields: ctx, id
func (_m *FollowUpQueue) CompleteFollowUp(ctx context.Context, id int64) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

// RescheduleFollowUp provides a mock function with given fields: ctx, id, attempts, next, lastErr
func (_m *FollowUpQueue) RescheduleFollowUp(ctx context.Context, id int64, attempts int, next time.Time, lastErr string) error {
	ret := _m.Called(ctx, id, attempts, next, lastErr)
	return ret.Error(0)
}

// AbandonFollowUp provides a mock function with given fields: ctx, id, attempts, lastErr
func (_m *FollowUpQueue) AbandonFollowUp(ctx context.Context, id int64, attempts int, lastErr string) error {
	ret := _m.Called(ctx, id, attempts, lastErr)
	return ret.Error(0)
}

// NewFollowUpQueue creates a new instance of FollowUpQueue. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewFollowUpQueue(t interface {
	mock.TestingT
	Cleanup(func())
}) *FollowUpQueue {
	m := &FollowUpQueue{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
