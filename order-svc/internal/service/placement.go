package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"foodexpress/order-svc/internal/domain"
	"foodexpress/pkg/httpx"
	"foodexpress/pkg/logger"
	"foodexpress/pkg/retry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTrackingNumber() string {
	return uuid.NewString()
}

// PlaceOrder converts the user's cart into an order. Steps run in a fixed
// order: fetch cart, validate, persist, notify, clear cart. Nothing is written
// before persist. Once the order is committed the call succeeds; notify and
// clear failures only schedule follow-ups.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, input domain.PlaceOrderInput) (*domain.PlacementResult, error) {
	method, err := domain.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	log := logger.With(zap.String("user_id", userID), zap.String("request_id", httpx.RequestIDFrom(ctx)))

	token, ok, err := s.lock.Acquire(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: placement lock: %v", domain.ErrStorageUnavailable, err)
	}
	if !ok {
		return nil, domain.ErrPlacementInProgress
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), userID, token); err != nil {
			log.Warn("Failed to release placement lock", zap.Error(err))
		}
	}()

	cart, err := s.fetchCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	if err := s.validateRestaurant(ctx, cart.RestaurantID); err != nil {
		return nil, err
	}

	order := domain.NewOrder(s.newTracking(), cart, method, input, s.now())
	placed, replay, err := s.persist(ctx, order, log)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("tracking_number", placed.TrackingNumber))

	// The order exists from here on; the caller going away must not stop
	// the remaining steps.
	bg := context.WithoutCancel(ctx)

	result := &domain.PlacementResult{
		OrderID:        placed.ID,
		TrackingNumber: placed.TrackingNumber,
		TotalAmount:    placed.TotalAmount,
		Status:         placed.Status,
	}
	if !replay {
		result.NotificationPending = !s.notify(bg, placed, log)
	}
	result.CartClearPending = !s.clearCart(bg, placed, log)

	log.Info("Order placed",
		zap.Int64("order_id", placed.ID),
		zap.String("total_amount", placed.TotalAmount.StringFixed(2)),
		zap.Bool("replay", replay),
		zap.Bool("notification_pending", result.NotificationPending),
		zap.Bool("cart_clear_pending", result.CartClearPending))

	return result, nil
}

func (s *OrderService) stepRetry(transient error) func(error) bool {
	return func(err error) bool {
		return errors.Is(err, transient) || errors.Is(err, context.DeadlineExceeded)
	}
}

func (s *OrderService) fetchCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cfg := s.opts.Retry
	cfg.AttemptTimeout = s.opts.StepTimeout
	cfg.RetryPredicate = s.stepRetry(domain.ErrCartUnavailable)

	var cart *domain.Cart
	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
		c, err := s.carts.GetCart(ctx, userID)
		if err != nil {
			return err
		}
		cart = c
		return nil
	})
	switch {
	case err == nil:
		return cart, nil
	case errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrCartUnavailable):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %v", domain.ErrCartUnavailable, err)
	}
}

func (s *OrderService) validateRestaurant(ctx context.Context, restaurantID string) error {
	cfg := s.opts.Retry
	cfg.AttemptTimeout = s.opts.StepTimeout
	cfg.RetryPredicate = s.stepRetry(domain.ErrRestaurantUnavailable)

	accepting := false
	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
		r, err := s.restaurants.GetRestaurant(ctx, restaurantID)
		if err != nil {
			return err
		}
		accepting = r.AcceptingOrders
		return nil
	})
	switch {
	case err == nil && !accepting:
		return domain.ErrRestaurantClosed
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrRestaurantNotFound), errors.Is(err, domain.ErrRestaurantUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrRestaurantUnavailable, err)
	}
}

// persist writes the order once, resolving ambiguous failures by reading
// back. A retry reuses the same tracking number.
func (s *OrderService) persist(ctx context.Context, order *domain.Order, log *zap.Logger) (*domain.Order, bool, error) {
	for attempt := 1; ; attempt++ {
		err := s.withTimeout(ctx, s.opts.PersistTimeout, func(ctx context.Context) error {
			return s.repo.CreateOrder(ctx, order)
		})
		if err == nil {
			return order, false, nil
		}

		if existing, lookupErr := s.lookupByTracking(ctx, order.TrackingNumber); lookupErr == nil {
			log.Warn("Order write reported an error but was committed",
				zap.String("tracking_number", order.TrackingNumber), zap.Error(err))
			return existing, false, nil
		}
		if existing, lookupErr := s.lookupByCartRef(ctx, order.UserID, order.CartRef); lookupErr == nil {
			log.Info("Cart already placed, returning existing order",
				zap.String("tracking_number", existing.TrackingNumber),
				zap.String("cart_ref", order.CartRef))
			return existing, true, nil
		}

		transient := errors.Is(err, domain.ErrStorageUnavailable) || errors.Is(err, context.DeadlineExceeded)
		if attempt >= 2 || !transient || ctx.Err() != nil {
			log.Error("Failed to persist order",
				zap.String("tracking_number", order.TrackingNumber),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return nil, false, fmt.Errorf("%w: %v", domain.ErrPersistFailed, err)
		}

		log.Warn("Retrying order write",
			zap.String("tracking_number", order.TrackingNumber), zap.Error(err))
	}
}

func (s *OrderService) lookupByTracking(ctx context.Context, trackingNumber string) (*domain.Order, error) {
	var order *domain.Order
	err := s.withTimeout(ctx, s.opts.StepTimeout, func(ctx context.Context) error {
		o, err := s.repo.GetByTrackingNumber(ctx, trackingNumber)
		order = o
		return err
	})
	return order, err
}

func (s *OrderService) lookupByCartRef(ctx context.Context, userID, cartRef string) (*domain.Order, error) {
	var order *domain.Order
	err := s.withTimeout(ctx, s.opts.StepTimeout, func(ctx context.Context) error {
		o, err := s.repo.GetByCartRef(ctx, userID, cartRef)
		order = o
		return err
	})
	return order, err
}

// notify reports whether the message went out now.
func (s *OrderService) notify(ctx context.Context, order *domain.Order, log *zap.Logger) bool {
	msg := domain.NewOrderPlacedMessage(order, s.now())
	err := s.withTimeout(ctx, s.opts.StepTimeout, func(ctx context.Context) error {
		return s.publisher.PublishOrderPlaced(ctx, msg)
	})
	if err == nil {
		return true
	}

	log.Error("Order notification failed, scheduling retry", zap.Error(err))
	payload, merr := json.Marshal(msg)
	if merr != nil {
		log.Error("Failed to encode notification for retry", zap.Error(merr))
		return false
	}
	s.enqueue(ctx, domain.FollowUp{
		Kind:           domain.FollowUpNotify,
		UserID:         order.UserID,
		TrackingNumber: order.TrackingNumber,
		Payload:        payload,
		NextAttemptAt:  s.now(),
		LastError:      err.Error(),
	}, log)
	return false
}

// clearCart reports whether the cart was cleared now.
func (s *OrderService) clearCart(ctx context.Context, order *domain.Order, log *zap.Logger) bool {
	err := s.withTimeout(ctx, s.opts.StepTimeout, func(ctx context.Context) error {
		return s.carts.ClearCart(ctx, order.UserID)
	})
	if err == nil {
		return true
	}

	log.Error("Cart clear failed after order placement, scheduling retry", zap.Error(err))
	s.enqueue(ctx, domain.FollowUp{
		Kind:           domain.FollowUpClearCart,
		UserID:         order.UserID,
		TrackingNumber: order.TrackingNumber,
		CartRef:        order.CartRef,
		NextAttemptAt:  s.now(),
		LastError:      err.Error(),
	}, log)
	return false
}

func (s *OrderService) enqueue(ctx context.Context, f domain.FollowUp, log *zap.Logger) {
	err := s.withTimeout(ctx, s.opts.PersistTimeout, func(ctx context.Context) error {
		return s.followups.EnqueueFollowUp(ctx, f)
	})
	if err != nil {
		log.Error("Failed to schedule follow-up, manual repair required",
			zap.String("kind", f.Kind),
			zap.String("tracking_number", f.TrackingNumber),
			zap.Error(err))
	}
}

func (s *OrderService) withTimeout(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}
