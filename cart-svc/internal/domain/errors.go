package domain

import "errors"

// Validation failures. Terminal for the request, never retried.
var (
	ErrConflictingRestaurant = errors.New("cannot add items from different restaurants, clear cart first")
	ErrCartFull              = errors.New("cart is full")
	ErrQuantityOutOfRange    = errors.New("quantity must be between 1 and 99")
	ErrInvalidItem           = errors.New("invalid cart item")
)

// Not-found failures.
var (
	ErrCartNotFound       = errors.New("no active cart found")
	ErrItemNotFound       = errors.New("item not found in cart")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrUserNotFound       = errors.New("user not found")
)

// Transient failures; the caller may retry.
var (
	ErrVersionConflict       = errors.New("cart was modified concurrently")
	ErrDownstreamUnavailable = errors.New("downstream service unavailable")
)
