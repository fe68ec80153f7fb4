package service

import (
	"context"
	"time"

	"foodexpress/order-svc/internal/client"
	"foodexpress/order-svc/internal/domain"
	"foodexpress/order-svc/internal/storage"
)

type OrderServiceInterface interface {
	PlaceOrder(ctx context.Context, userID string, input domain.PlaceOrderInput) (*domain.PlacementResult, error)
	GetOrder(ctx context.Context, trackingNumber string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, trackingNumber string, status domain.OrderStatus) (*domain.Order, error)
	GetQRCode(ctx context.Context, trackingNumber string) ([]byte, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Order, error)
	GetByCartRef(ctx context.Context, userID, cartRef string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, trackingNumber string, from, to domain.OrderStatus) error
	GetQRCode(ctx context.Context, trackingNumber string) ([]byte, error)
	SaveQRCode(ctx context.Context, trackingNumber string, qr []byte) error
}

type FollowUpQueue interface {
	EnqueueFollowUp(ctx context.Context, f domain.FollowUp) error
	ClaimDueFollowUps(ctx context.Context, now, leaseUntil time.Time, limit int) ([]domain.FollowUp, error)
	CompleteFollowUp(ctx context.Context, id int64) error
	RescheduleFollowUp(ctx context.Context, id int64, attempts int, next time.Time, lastErr string) error
	AbandonFollowUp(ctx context.Context, id int64, attempts int, lastErr string) error
}

type PlacementLock interface {
	Acquire(ctx context.Context, userID string) (string, bool, error)
	Release(ctx context.Context, userID, token string) error
}

type CartClient interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

type RestaurantClient interface {
	GetRestaurant(ctx context.Context, restaurantID string) (*client.Restaurant, error)
}

type NotificationPublisher interface {
	PublishOrderPlaced(ctx context.Context, msg domain.NotificationMessage) error
}

var (
	_ OrderServiceInterface = (*OrderService)(nil)
	_ OrderRepository       = (*storage.PostgresRepository)(nil)
	_ FollowUpQueue         = (*storage.PostgresRepository)(nil)
	_ PlacementLock         = (*storage.PlacementLock)(nil)
	_ NotificationPublisher = (*storage.KafkaPublisher)(nil)
	_ CartClient            = (*client.CartClient)(nil)
	_ RestaurantClient      = (*client.RestaurantClient)(nil)
	_ QRGenerator           = DefaultQRGenerator{}
)
