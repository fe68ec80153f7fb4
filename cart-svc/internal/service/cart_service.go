package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodexpress/cart-svc/internal/domain"
	"foodexpress/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AddItemInput struct {
	RestaurantID   string          `json:"restaurant_id"`
	MenuItemID     string          `json:"menu_item_id"`
	ItemName       string          `json:"item_name"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	Customizations string          `json:"customizations,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
}

func (in AddItemInput) item() domain.CartItem {
	return domain.CartItem{
		MenuItemID:     strings.TrimSpace(in.MenuItemID),
		Name:           strings.TrimSpace(in.ItemName),
		Price:          in.Price,
		Quantity:       in.Quantity,
		Customizations: in.Customizations,
		ImageURL:       in.ImageURL,
	}
}

// errUnchanged short-circuits a mutation that has nothing to write.
var errUnchanged = errors.New("cart unchanged")

type CartService struct {
	store      CartStore
	catalog    Catalog
	policy     domain.Policy
	maxRetries int
	now        func() time.Time
}

func NewCartService(store CartStore, catalog Catalog, policy domain.Policy, maxRetries int) *CartService {
	return &CartService{
		store:      store,
		catalog:    catalog,
		policy:     policy,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *CartService) WithClock(now func() time.Time) *CartService {
	s.now = now
	return s
}

func (s *CartService) AddItem(ctx context.Context, userID string, input AddItemInput) (*domain.Cart, error) {
	restaurantID := strings.TrimSpace(input.RestaurantID)
	if restaurantID == "" {
		return nil, fmt.Errorf("%w: restaurant id is required", domain.ErrInvalidItem)
	}
	item := input.item()
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := s.catalog.CheckUser(ctx, userID); err != nil {
		return nil, err
	}
	restaurant, err := s.catalog.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, true, func(cart *domain.Cart, now time.Time) error {
		return cart.AddItem(restaurantID, restaurant.Name, item, now, s.policy)
	})
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.store.Load(ctx, userID)
}

func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, menuItemID string, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, userID, false, func(cart *domain.Cart, now time.Time) error {
		return cart.UpdateItemQuantity(menuItemID, quantity, now, s.policy)
	})
}

// RemoveItem treats an item that is already gone as success.
func (s *CartService) RemoveItem(ctx context.Context, userID, menuItemID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, false, func(cart *domain.Cart, now time.Time) error {
		err := cart.RemoveItem(menuItemID, now, s.policy)
		if errors.Is(err, domain.ErrItemNotFound) {
			return errUnchanged
		}
		return err
	})
}

// ClearCart is idempotent: clearing a missing or expired cart succeeds.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	_, err := s.mutate(ctx, userID, false, func(cart *domain.Cart, now time.Time) error {
		cart.Clear(now)
		return nil
	})
	if errors.Is(err, domain.ErrCartNotFound) {
		return s.store.Delete(ctx, userID)
	}
	if err != nil {
		return err
	}
	logger.Info("Cart cleared", zap.String("user_id", userID))
	return nil
}

// mutate runs load, apply and conditional save, starting over when another
// writer got in between.
func (s *CartService) mutate(ctx context.Context, userID string, create bool, apply func(*domain.Cart, time.Time) error) (*domain.Cart, error) {
	for attempt := 0; ; attempt++ {
		now := s.now()
		cart, err := s.store.Load(ctx, userID)
		switch {
		case errors.Is(err, domain.ErrCartNotFound) && create:
			cart = domain.NewCart(userID, now)
		case err != nil:
			return nil, err
		}

		if err := apply(cart, now); err != nil {
			if errors.Is(err, errUnchanged) {
				return cart.Snapshot(), nil
			}
			return nil, err
		}

		err = s.store.Save(ctx, cart)
		if err == nil {
			return cart.Snapshot(), nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt >= s.maxRetries {
			return nil, err
		}
		logger.Debug("Cart version conflict, retrying",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt+1))
	}
}
