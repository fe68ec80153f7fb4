package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"foodexpress/order-svc/internal/domain"
	"foodexpress/pkg/httpx"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// CartClient talks to the cart service on behalf of a user.
type CartClient struct {
	baseURL string
	client  HTTPClient
}

func NewCartClient(baseURL string, client HTTPClient) *CartClient {
	return &CartClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *CartClient) newRequest(ctx context.Context, method, userID string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1/cart", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(httpx.UserIDHeader, userID)
	if id := httpx.RequestIDFrom(ctx); id != "" {
		req.Header.Set(httpx.RequestIDHeader, id)
	}
	return req, nil
}

// GetCart returns ErrEmptyCart when the user has no live cart.
func (c *CartClient) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	req, err := c.newRequest(ctx, http.MethodGet, userID)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCartUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrEmptyCart
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: cart service returned %d", domain.ErrCartUnavailable, resp.StatusCode)
	}

	var body envelope[domain.Cart]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: malformed cart response: %v", domain.ErrCartUnavailable, err)
	}
	if body.Data.UserID == "" {
		body.Data.UserID = userID
	}
	return &body.Data, nil
}

// ClearCart is idempotent: a cart that is already gone counts as cleared.
func (c *CartClient) ClearCart(ctx context.Context, userID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, userID)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCartUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("%w: cart service returned %d", domain.ErrCartUnavailable, resp.StatusCode)
	}
	return nil
}

type Restaurant struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	AcceptingOrders bool   `json:"accepting_orders"`
}

// RestaurantClient reads restaurant availability. With no base URL every
// restaurant is treated as open.
type RestaurantClient struct {
	baseURL string
	client  HTTPClient
}

func NewRestaurantClient(baseURL string, client HTTPClient) *RestaurantClient {
	return &RestaurantClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *RestaurantClient) GetRestaurant(ctx context.Context, restaurantID string) (*Restaurant, error) {
	if c.baseURL == "" {
		return &Restaurant{ID: restaurantID, AcceptingOrders: true}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/restaurants/"+url.PathEscape(restaurantID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRestaurantUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrRestaurantNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: restaurant service returned %d", domain.ErrRestaurantUnavailable, resp.StatusCode)
	}

	var body envelope[Restaurant]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: malformed restaurant response: %v", domain.ErrRestaurantUnavailable, err)
	}
	if body.Data.ID == "" {
		body.Data.ID = restaurantID
	}
	return &body.Data, nil
}
