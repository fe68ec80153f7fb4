package domain

import "errors"

var (
	ErrEmptyCart            = errors.New("cart is empty, cannot place order")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrRestaurantClosed     = errors.New("restaurant is not accepting orders")
	ErrPlacementInProgress  = errors.New("an order placement is already in progress for this user")
	ErrInvalidTransition    = errors.New("order status transition not allowed")
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
)

var (
	// ErrCartUnavailable and ErrRestaurantUnavailable mark transient
	// failures of a remote collaborator.
	ErrCartUnavailable       = errors.New("cart service unavailable")
	ErrRestaurantUnavailable = errors.New("restaurant service unavailable")
	ErrPersistFailed         = errors.New("order could not be persisted")
	ErrStorageUnavailable    = errors.New("order storage unavailable")
	ErrDuplicateOrder        = errors.New("order already exists")
)
