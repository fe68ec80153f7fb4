package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"foodexpress/cart-svc/internal/domain"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Restaurant struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	AcceptingOrders bool   `json:"accepting_orders"`
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// CatalogClient looks up restaurants and users in the external catalog
// and identity services. An empty base URL turns the lookup into a no-op.
type CatalogClient struct {
	restaurantURL string
	userURL       string
	timeout       time.Duration
	client        HTTPClient
}

func NewCatalogClient(restaurantURL, userURL string, timeout time.Duration, client HTTPClient) *CatalogClient {
	return &CatalogClient{
		restaurantURL: strings.TrimRight(restaurantURL, "/"),
		userURL:       strings.TrimRight(userURL, "/"),
		timeout:       timeout,
		client:        client,
	}
}

func (c *CatalogClient) GetRestaurant(ctx context.Context, restaurantID string) (*Restaurant, error) {
	if c.restaurantURL == "" {
		return &Restaurant{ID: restaurantID, AcceptingOrders: true}, nil
	}

	var body envelope[Restaurant]
	endpoint := c.restaurantURL + "/api/v1/restaurants/" + url.PathEscape(restaurantID)
	if err := c.get(ctx, endpoint, &body, domain.ErrRestaurantNotFound); err != nil {
		return nil, err
	}
	if body.Data.ID == "" {
		body.Data.ID = restaurantID
	}
	return &body.Data, nil
}

func (c *CatalogClient) CheckUser(ctx context.Context, userID string) error {
	if c.userURL == "" {
		return nil
	}

	var body envelope[bool]
	endpoint := c.userURL + "/api/v1/users/internal/" + url.PathEscape(userID) + "/exists"
	if err := c.get(ctx, endpoint, &body, domain.ErrUserNotFound); err != nil {
		return err
	}
	if !body.Data {
		return domain.ErrUserNotFound
	}
	return nil
}

func (c *CatalogClient) get(ctx context.Context, endpoint string, out any, notFound error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Join(domain.ErrDownstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return notFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s returned %d", domain.ErrDownstreamUnavailable, endpoint, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected catalog status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed catalog response: %v", domain.ErrDownstreamUnavailable, err)
	}
	return nil
}
