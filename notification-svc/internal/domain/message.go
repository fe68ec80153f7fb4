package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const TypeOrderPlaced = "order_placed"

// NotificationMessage is the payload order-svc publishes for every placed
// order.
type NotificationMessage struct {
	Type           string          `json:"type"`
	OrderID        int64           `json:"order_id"`
	TrackingNumber string          `json:"tracking_number"`
	UserID         string          `json:"user_id"`
	RestaurantID   string          `json:"restaurant_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Timestamp      time.Time       `json:"timestamp"`
}
