package service

import (
	"context"
	"fmt"

	"foodexpress/notification-svc/internal/domain"
	"foodexpress/pkg/logger"

	"go.uber.org/zap"
)

// LogNotifier delivers notifications to the service log.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, msg domain.NotificationMessage) error {
	logger.Info(fmt.Sprintf("Order Placed! ID: %s for %s", msg.TrackingNumber, msg.TotalAmount.StringFixed(2)),
		zap.String("user_id", msg.UserID),
		zap.Int64("order_id", msg.OrderID),
		zap.String("restaurant_id", msg.RestaurantID))
	return nil
}
