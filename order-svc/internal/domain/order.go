package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusCreated        OrderStatus = "CREATED"
	StatusConfirmed      OrderStatus = "CONFIRMED"
	StatusPreparing      OrderStatus = "PREPARING"
	StatusReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
	StatusFailed         OrderStatus = "FAILED"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusCreated:        {StatusConfirmed, StatusCancelled, StatusFailed},
	StatusConfirmed:      {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReadyForPickup},
	StatusReadyForPickup: {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered, StatusFailed},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case StatusCreated, StatusConfirmed, StatusPreparing, StatusReadyForPickup,
		StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusFailed:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard      PaymentMethod = "DEBIT_CARD"
	PaymentUPI            PaymentMethod = "UPI"
	PaymentNetBanking     PaymentMethod = "NET_BANKING"
	PaymentWallet         PaymentMethod = "WALLET"
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
)

// ParsePaymentMethod defaults an empty value to cash on delivery.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	method := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch method {
	case "":
		return PaymentCashOnDelivery, nil
	case PaymentCreditCard, PaymentDebitCard, PaymentUPI, PaymentNetBanking, PaymentWallet, PaymentCashOnDelivery:
		return method, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, s)
}

type OrderItem struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	ImageURL   string          `json:"image_url,omitempty"`
}

type Order struct {
	ID              int64           `json:"id"`
	TrackingNumber  string          `json:"tracking_number"`
	UserID          string          `json:"user_id"`
	RestaurantID    string          `json:"restaurant_id"`
	RestaurantName  string          `json:"restaurant_name,omitempty"`
	Items           []OrderItem     `json:"items"`
	TotalItems      int             `json:"total_items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          OrderStatus     `json:"status"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	DeliveryAddress string          `json:"delivery_address"`
	DeliveryLat     *float64        `json:"delivery_lat,omitempty"`
	DeliveryLng     *float64        `json:"delivery_lng,omitempty"`
	CartRef         string          `json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CartItem and Cart mirror the snapshot served by the cart service.
type CartItem struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"item_name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	ImageURL   string          `json:"image_url,omitempty"`
}

type Cart struct {
	UserID         string          `json:"user_id"`
	RestaurantID   string          `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name"`
	Items          []CartItem      `json:"items"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalItems     int             `json:"total_items"`
	CreatedAt      time.Time       `json:"created_at"`
	Version        int64           `json:"version"`
}

// Ref identifies this exact cart state. Two placements that read the same
// cart state produce the same ref.
func (c *Cart) Ref() string {
	return fmt.Sprintf("%s:%d", c.lineage(), c.Version)
}

func (c *Cart) lineage() string {
	return fmt.Sprintf("%s:%d", c.UserID, c.CreatedAt.UnixNano())
}

// SameCart reports whether ref was taken from this cart at any version.
// A cart rebuilt after a clear or expiry has a new creation time.
func (c *Cart) SameCart(ref string) bool {
	return strings.HasPrefix(ref, c.lineage()+":")
}

type PlaceOrderInput struct {
	PaymentMethod   string   `json:"payment_method"`
	DeliveryAddress string   `json:"delivery_address"`
	DeliveryLat     *float64 `json:"delivery_lat,omitempty"`
	DeliveryLng     *float64 `json:"delivery_lng,omitempty"`
}

// NewOrder copies the cart into an order shell in the CREATED state. Line
// subtotals and totals are taken from the snapshot as served, never recomputed.
func NewOrder(trackingNumber string, cart *Cart, method PaymentMethod, input PlaceOrderInput, now time.Time) *Order {
	items := make([]OrderItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		items = append(items, OrderItem{
			MenuItemID: ci.MenuItemID,
			Name:       ci.Name,
			Price:      ci.Price,
			Quantity:   ci.Quantity,
			Subtotal:   ci.Subtotal,
			ImageURL:   ci.ImageURL,
		})
	}

	return &Order{
		TrackingNumber:  trackingNumber,
		UserID:          cart.UserID,
		RestaurantID:    cart.RestaurantID,
		RestaurantName:  cart.RestaurantName,
		Items:           items,
		TotalItems:      cart.TotalItems,
		TotalAmount:     cart.TotalAmount,
		Status:          StatusCreated,
		PaymentMethod:   method,
		PaymentStatus:   PaymentPending,
		DeliveryAddress: strings.TrimSpace(input.DeliveryAddress),
		DeliveryLat:     input.DeliveryLat,
		DeliveryLng:     input.DeliveryLng,
		CartRef:         cart.Ref(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

type PlacementResult struct {
	OrderID             int64           `json:"order_id"`
	TrackingNumber      string          `json:"tracking_number"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	Status              OrderStatus     `json:"status"`
	NotificationPending bool            `json:"notification_pending"`
	CartClearPending    bool            `json:"cart_clear_pending"`
}

const NotificationOrderPlaced = "order_placed"

// NotificationMessage is the flat payload published once per placed order.
type NotificationMessage struct {
	Type           string          `json:"type"`
	OrderID        int64           `json:"order_id"`
	TrackingNumber string          `json:"tracking_number"`
	UserID         string          `json:"user_id"`
	RestaurantID   string          `json:"restaurant_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Timestamp      time.Time       `json:"timestamp"`
}

func NewOrderPlacedMessage(order *Order, now time.Time) NotificationMessage {
	return NotificationMessage{
		Type:           NotificationOrderPlaced,
		OrderID:        order.ID,
		TrackingNumber: order.TrackingNumber,
		UserID:         order.UserID,
		RestaurantID:   order.RestaurantID,
		TotalAmount:    order.TotalAmount,
		Timestamp:      now,
	}
}

// FollowUp kinds scheduled when a post-commit saga step fails.
const (
	FollowUpClearCart = "clear_cart"
	FollowUpNotify    = "notify"
)

type FollowUp struct {
	ID             int64
	Kind           string
	UserID         string
	TrackingNumber string
	// CartRef pins a clear_cart follow-up to the cart the order was placed from.
	CartRef       string
	Payload       []byte
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
}
