package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinQuantity            = 1
	MaxQuantity            = 99
	MaxCustomizationLength = 500
	PriceScale             = 2

	DefaultMaxItems = 50
	DefaultTTL      = 30 * time.Minute
)

// MaxPrice bounds a single unit price. Together with MaxQuantity it keeps
// every line subtotal inside NUMERIC(10, 2).
var MaxPrice = decimal.NewFromInt(10000)

// Policy carries the configurable cart limits.
type Policy struct {
	MaxItems int
	TTL      time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxItems: DefaultMaxItems, TTL: DefaultTTL}
}

type CartItem struct {
	MenuItemID     string          `json:"menu_item_id"`
	Name           string          `json:"item_name"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Customizations string          `json:"customizations,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
}

func (i CartItem) Validate() error {
	if strings.TrimSpace(i.MenuItemID) == "" {
		return fmt.Errorf("%w: menu item id is required", ErrInvalidItem)
	}
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: item name is required", ErrInvalidItem)
	}
	if !i.Price.IsPositive() {
		return fmt.Errorf("%w: price must be greater than 0", ErrInvalidItem)
	}
	if !i.Price.Equal(i.Price.Round(PriceScale)) {
		return fmt.Errorf("%w: price must have at most %d decimal places", ErrInvalidItem, PriceScale)
	}
	if i.Price.GreaterThan(MaxPrice) {
		return fmt.Errorf("%w: price must not exceed %s", ErrInvalidItem, MaxPrice.StringFixed(PriceScale))
	}
	if len(i.Customizations) > MaxCustomizationLength {
		return fmt.Errorf("%w: customizations must not exceed %d characters", ErrInvalidItem, MaxCustomizationLength)
	}
	return validQuantity(i.Quantity)
}

func validQuantity(q int) error {
	if q < MinQuantity || q > MaxQuantity {
		return ErrQuantityOutOfRange
	}
	return nil
}

func lineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Cart is one user's cart. Every exported mutation validates before it
// touches any field, so a rejected call leaves the cart exactly as it was.
type Cart struct {
	UserID         string          `json:"user_id"`
	RestaurantID   string          `json:"restaurant_id,omitempty"`
	RestaurantName string          `json:"restaurant_name,omitempty"`
	Items          []CartItem      `json:"items"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalItems     int             `json:"total_items"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	ExpiresAt      time.Time       `json:"expires_at"`
	Version        int64           `json:"version"`
}

func NewCart(userID string, now time.Time) *Cart {
	return &Cart{
		UserID:      userID,
		Items:       []CartItem{},
		TotalAmount: decimal.Zero,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

func (c *Cart) indexOf(menuItemID string) int {
	for i := range c.Items {
		if c.Items[i].MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

// AddItem binds an empty cart to restaurantID, then merges item into the
// line with the same menu item id or appends a new line.
func (c *Cart) AddItem(restaurantID, restaurantName string, item CartItem, now time.Time, policy Policy) error {
	if strings.TrimSpace(restaurantID) == "" {
		return fmt.Errorf("%w: restaurant id is required", ErrInvalidItem)
	}
	if err := item.Validate(); err != nil {
		return err
	}
	if c.RestaurantID != "" && c.RestaurantID != restaurantID && !c.IsEmpty() {
		return ErrConflictingRestaurant
	}
	if len(c.Items) >= policy.MaxItems {
		return fmt.Errorf("%w: maximum %d items allowed", ErrCartFull, policy.MaxItems)
	}

	idx := c.indexOf(item.MenuItemID)
	if idx >= 0 {
		if err := validQuantity(c.Items[idx].Quantity + item.Quantity); err != nil {
			return err
		}
	}

	if c.IsEmpty() {
		c.RestaurantID = restaurantID
		c.RestaurantName = restaurantName
	} else if c.RestaurantName == "" {
		c.RestaurantName = restaurantName
	}

	if idx >= 0 {
		existing := &c.Items[idx]
		existing.Quantity += item.Quantity
		existing.Subtotal = lineTotal(existing.Price, existing.Quantity)
	} else {
		item.Subtotal = lineTotal(item.Price, item.Quantity)
		c.Items = append(c.Items, item)
	}

	c.touch(now, policy)
	return nil
}

func (c *Cart) UpdateItemQuantity(menuItemID string, quantity int, now time.Time, policy Policy) error {
	if err := validQuantity(quantity); err != nil {
		return err
	}
	idx := c.indexOf(menuItemID)
	if idx < 0 {
		return ErrItemNotFound
	}

	c.Items[idx].Quantity = quantity
	c.Items[idx].Subtotal = lineTotal(c.Items[idx].Price, quantity)
	c.touch(now, policy)
	return nil
}

// RemoveItem drops the line. Removing the last line releases the
// restaurant binding so the next add may pick any restaurant.
func (c *Cart) RemoveItem(menuItemID string, now time.Time, policy Policy) error {
	idx := c.indexOf(menuItemID)
	if idx < 0 {
		return ErrItemNotFound
	}

	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	if c.IsEmpty() {
		c.RestaurantID = ""
		c.RestaurantName = ""
	}
	c.touch(now, policy)
	return nil
}

// Clear empties the cart and marks it inactive.
func (c *Cart) Clear(now time.Time) {
	c.Items = []CartItem{}
	c.RestaurantID = ""
	c.RestaurantName = ""
	c.Active = false
	c.UpdatedAt = now
	c.recalculate()
}

func (c *Cart) touch(now time.Time, policy Policy) {
	c.recalculate()
	c.Active = true
	c.UpdatedAt = now
	c.ExpiresAt = now.Add(policy.TTL)
}

func (c *Cart) recalculate() {
	total := decimal.Zero
	count := 0
	for _, item := range c.Items {
		total = total.Add(item.Subtotal)
		count += item.Quantity
	}
	c.TotalAmount = total
	c.TotalItems = count
}

// Snapshot returns a copy that shares no memory with c.
func (c *Cart) Snapshot() *Cart {
	cp := *c
	cp.Items = make([]CartItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
