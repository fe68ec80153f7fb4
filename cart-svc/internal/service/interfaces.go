package service

import (
	"context"

	"foodexpress/cart-svc/internal/client"
	"foodexpress/cart-svc/internal/domain"
)

type CartServiceInterface interface {
	AddItem(ctx context.Context, userID string, input AddItemInput) (*domain.Cart, error)
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, menuItemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, menuItemID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

type CartStore interface {
	Load(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

type Catalog interface {
	GetRestaurant(ctx context.Context, restaurantID string) (*client.Restaurant, error)
	CheckUser(ctx context.Context, userID string) error
}

var _ CartServiceInterface = (*CartService)(nil)
