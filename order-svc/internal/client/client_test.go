package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodexpress/order-svc/internal/domain"
	"foodexpress/pkg/httpx"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartServer(t *testing.T) (*httptest.Server, chan string) {
	cleared := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(httpx.UserIDHeader)
		switch {
		case r.URL.Path != "/api/v1/cart":
			w.WriteHeader(http.StatusNotFound)
		case userID == "down":
			w.WriteHeader(http.StatusServiceUnavailable)
		case r.Method == http.MethodDelete:
			cleared <- userID
			w.WriteHeader(http.StatusOK)
		case userID == "u1":
			w.Write([]byte(`{"success":true,"data":{"user_id":"u1","restaurant_id":"r1","items":[
				{"menu_item_id":"A","item_name":"Pizza","price":"10.00","quantity":2,"subtotal":"20.00"}],
				"total_amount":"20.00","total_items":2,"created_at":"2024-01-01T00:00:00Z","version":3}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, cleared
}

func TestCartClient_GetCart(t *testing.T) {
	srv, _ := cartServer(t)
	c := NewCartClient(srv.URL, srv.Client())
	ctx := context.Background()

	cart, err := c.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "r1", cart.RestaurantID)
	assert.Equal(t, int64(3), cart.Version)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.Items[0].Price.Equal(decimal.NewFromInt(10)))

	_, err = c.GetCart(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	_, err = c.GetCart(ctx, "down")
	assert.ErrorIs(t, err, domain.ErrCartUnavailable)
}

func TestCartClient_ClearCart(t *testing.T) {
	srv, cleared := cartServer(t)
	c := NewCartClient(srv.URL, srv.Client())

	require.NoError(t, c.ClearCart(context.Background(), "u1"))
	assert.Equal(t, "u1", <-cleared)
	assert.ErrorIs(t, c.ClearCart(context.Background(), "down"), domain.ErrCartUnavailable)

	srv.Close()
	assert.ErrorIs(t, c.ClearCart(context.Background(), "u1"), domain.ErrCartUnavailable)
}

func TestRestaurantClient_GetRestaurant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/restaurants/open":
			w.Write([]byte(`{"success":true,"data":{"id":"open","name":"Open Place","accepting_orders":true}}`))
		case "/api/v1/restaurants/closed":
			w.Write([]byte(`{"success":true,"data":{"id":"closed","accepting_orders":false}}`))
		case "/api/v1/restaurants/flaky":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	c := NewRestaurantClient(srv.URL, srv.Client())
	ctx := context.Background()

	r, err := c.GetRestaurant(ctx, "open")
	require.NoError(t, err)
	assert.True(t, r.AcceptingOrders)

	r, err = c.GetRestaurant(ctx, "closed")
	require.NoError(t, err)
	assert.False(t, r.AcceptingOrders)

	_, err = c.GetRestaurant(ctx, "flaky")
	assert.ErrorIs(t, err, domain.ErrRestaurantUnavailable)

	_, err = c.GetRestaurant(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrRestaurantNotFound)

	r, err = NewRestaurantClient("", nil).GetRestaurant(ctx, "any")
	require.NoError(t, err)
	assert.True(t, r.AcceptingOrders)
}
