package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"foodexpress/order-svc/internal/domain"
	"foodexpress/pkg/logger"
	"foodexpress/pkg/retry"

	"go.uber.org/zap"
)

type FollowUpOptions struct {
	PollInterval time.Duration
	BatchSize    int
	// MaxAttempts caps notify follow-ups only. Cart clears retry until
	// they succeed.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	StepTimeout time.Duration
}

func DefaultFollowUpOptions() FollowUpOptions {
	return FollowUpOptions{
		PollInterval: 5 * time.Second,
		BatchSize:    20,
		MaxAttempts:  10,
		BaseDelay:    2 * time.Second,
		MaxDelay:     5 * time.Minute,
		StepTimeout:  3 * time.Second,
	}
}

// FollowUpWorker finishes post-commit steps of placements that failed
// the first time.
type FollowUpWorker struct {
	queue     FollowUpQueue
	carts     CartClient
	publisher NotificationPublisher
	opts      FollowUpOptions
	now       func() time.Time
}

func NewFollowUpWorker(queue FollowUpQueue, carts CartClient, publisher NotificationPublisher, opts FollowUpOptions) *FollowUpWorker {
	return &FollowUpWorker{
		queue:     queue,
		carts:     carts,
		publisher: publisher,
		opts:      opts,
		now:       time.Now,
	}
}

func (w *FollowUpWorker) WithClock(now func() time.Time) *FollowUpWorker {
	w.now = now
	return w
}

// Run polls until ctx is cancelled.
func (w *FollowUpWorker) Run(ctx context.Context) {
	logger.Info("Follow-up worker started", zap.Duration("poll_interval", w.opts.PollInterval))

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := w.ProcessDue(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("Failed to claim follow-ups", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			logger.Info("Follow-up worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// ProcessDue runs one batch of due follow-ups and returns how many it
// claimed.
func (w *FollowUpWorker) ProcessDue(ctx context.Context) (int, error) {
	now := w.now()
	lease := w.opts.StepTimeout * 2
	if lease < w.opts.BaseDelay {
		lease = w.opts.BaseDelay
	}

	batch, err := w.queue.ClaimDueFollowUps(ctx, now, now.Add(lease), w.opts.BatchSize)
	if err != nil {
		return 0, err
	}
	for _, f := range batch {
		w.process(ctx, f)
	}
	return len(batch), nil
}

func (w *FollowUpWorker) process(ctx context.Context, f domain.FollowUp) {
	log := logger.With(
		zap.Int64("followup_id", f.ID),
		zap.String("kind", f.Kind),
		zap.String("tracking_number", f.TrackingNumber),
		zap.String("user_id", f.UserID))

	attempts := f.Attempts + 1
	err := w.execute(ctx, f)
	if err == nil {
		if cerr := w.queue.CompleteFollowUp(ctx, f.ID); cerr != nil {
			log.Warn("Failed to mark follow-up done", zap.Error(cerr))
			return
		}
		log.Info("Follow-up completed", zap.Int("attempts", attempts))
		return
	}

	giveUp := f.Kind != domain.FollowUpClearCart && attempts >= w.opts.MaxAttempts
	if giveUp {
		log.Error("Giving up on follow-up, notification will not be delivered",
			zap.Int("attempts", attempts), zap.Error(err))
		if aerr := w.queue.AbandonFollowUp(ctx, f.ID, attempts, err.Error()); aerr != nil {
			log.Warn("Failed to abandon follow-up", zap.Error(aerr))
		}
		return
	}

	delay := retry.ExponentialBackoffWithJitter(attempts, retry.Config{
		InitialDelay:  w.opts.BaseDelay,
		MaxDelay:      w.opts.MaxDelay,
		BackoffFactor: 2,
		JitterEnabled: true,
	})
	next := w.now().Add(delay)
	log.Warn("Follow-up failed, rescheduling",
		zap.Int("attempts", attempts), zap.Time("next_attempt_at", next), zap.Error(err))
	if rerr := w.queue.RescheduleFollowUp(ctx, f.ID, attempts, next, err.Error()); rerr != nil {
		log.Warn("Failed to reschedule follow-up", zap.Error(rerr))
	}
}

func (w *FollowUpWorker) execute(ctx context.Context, f domain.FollowUp) error {
	if w.opts.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.StepTimeout)
		defer cancel()
	}

	switch f.Kind {
	case domain.FollowUpClearCart:
		return w.clearCart(ctx, f)
	case domain.FollowUpNotify:
		var msg domain.NotificationMessage
		if err := json.Unmarshal(f.Payload, &msg); err != nil {
			return fmt.Errorf("decode notification payload: %w", err)
		}
		return w.publisher.PublishOrderPlaced(ctx, msg)
	default:
		return fmt.Errorf("unknown follow-up kind %q", f.Kind)
	}
}

// clearCart only clears the cart the order was placed from. A cart the user
// started after that is left alone.
func (w *FollowUpWorker) clearCart(ctx context.Context, f domain.FollowUp) error {
	if f.CartRef != "" {
		cart, err := w.carts.GetCart(ctx, f.UserID)
		if errors.Is(err, domain.ErrEmptyCart) {
			return nil
		}
		if err != nil {
			return err
		}
		if !cart.SameCart(f.CartRef) {
			logger.Info("Cart was replaced since placement, skipping clear",
				zap.String("tracking_number", f.TrackingNumber), zap.String("user_id", f.UserID))
			return nil
		}
	}
	return w.carts.ClearCart(ctx, f.UserID)
}
