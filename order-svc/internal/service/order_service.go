package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodexpress/order-svc/internal/domain"
	"foodexpress/pkg/logger"
	"foodexpress/pkg/retry"

	"go.uber.org/zap"
)

const listLimit = 50

// PlacementOptions bounds every remote step of a placement.
type PlacementOptions struct {
	StepTimeout    time.Duration
	PersistTimeout time.Duration
	Retry          retry.Config
}

func DefaultPlacementOptions() PlacementOptions {
	return PlacementOptions{
		StepTimeout:    3 * time.Second,
		PersistTimeout: 5 * time.Second,
		Retry:          retry.DefaultConfig,
	}
}

type OrderService struct {
	repo        OrderRepository
	followups   FollowUpQueue
	lock        PlacementLock
	carts       CartClient
	restaurants RestaurantClient
	publisher   NotificationPublisher
	qrGen       QRGenerator
	opts        PlacementOptions
	now         func() time.Time
	newTracking func() string
}

func NewOrderService(
	repo OrderRepository,
	followups FollowUpQueue,
	lock PlacementLock,
	carts CartClient,
	restaurants RestaurantClient,
	publisher NotificationPublisher,
	qrGen QRGenerator,
	opts PlacementOptions,
) *OrderService {
	return &OrderService{
		repo:        repo,
		followups:   followups,
		lock:        lock,
		carts:       carts,
		restaurants: restaurants,
		publisher:   publisher,
		qrGen:       qrGen,
		opts:        opts,
		now:         time.Now,
		newTracking: newTrackingNumber,
	}
}

// WithClock replaces the time source; used by tests.
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// WithTrackingNumbers replaces the tracking number generator; used by tests.
func (s *OrderService) WithTrackingNumbers(gen func() string) *OrderService {
	s.newTracking = gen
	return s
}

func (s *OrderService) GetOrder(ctx context.Context, trackingNumber string) (*domain.Order, error) {
	return s.repo.GetByTrackingNumber(ctx, trackingNumber)
}

func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID, listLimit)
}

func (s *OrderService) UpdateStatus(ctx context.Context, trackingNumber string, status domain.OrderStatus) (*domain.Order, error) {
	order, err := s.repo.GetByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, trackingNumber, order.Status, status); err != nil {
		return nil, err
	}

	logger.Info("Order status updated",
		zap.String("tracking_number", trackingNumber),
		zap.String("from", string(order.Status)),
		zap.String("to", string(status)))

	order.Status = status
	order.UpdatedAt = s.now()
	return order, nil
}

// GetQRCode returns the stored code, generating and caching it on first use.
func (s *OrderService) GetQRCode(ctx context.Context, trackingNumber string) ([]byte, error) {
	qr, err := s.repo.GetQRCode(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	if len(qr) > 0 {
		return qr, nil
	}

	qr, err = s.qrGen.Generate(trackingNumber)
	if err != nil {
		return nil, fmt.Errorf("generate qr code: %w", err)
	}

	if err := s.repo.SaveQRCode(ctx, trackingNumber, qr); err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
		logger.Warn("Failed to cache QR code",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err))
	}
	return qr, nil
}
