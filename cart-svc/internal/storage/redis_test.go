package storage

import (
	"context"
	"testing"
	"time"

	"foodexpress/cart-svc/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*CartStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCartStore(client, 30*time.Minute), mr
}

func filledCart(t *testing.T, userID string) *domain.Cart {
	now := time.Now()
	cart := domain.NewCart(userID, now)
	require.NoError(t, cart.AddItem("r1", "Pizza Place", domain.CartItem{
		MenuItemID: "m1",
		Name:       "Margherita",
		Price:      decimal.RequireFromString("12.50"),
		Quantity:   2,
	}, now, domain.DefaultPolicy()))
	return cart
}

func TestCartStore_LoadMissing(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestCartStore_SaveAndLoad(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	cart := filledCart(t, "u1")

	require.NoError(t, store.Save(ctx, cart))
	assert.Equal(t, int64(1), cart.Version)
	assert.True(t, mr.Exists("cart:u1"))
	assert.Greater(t, mr.TTL("cart:u1"), time.Duration(0))

	loaded, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.Version)
	assert.Equal(t, "r1", loaded.RestaurantID)
	require.Len(t, loaded.Items, 1)
	assert.True(t, loaded.TotalAmount.Equal(decimal.RequireFromString("25.00")))
}

func TestCartStore_SaveRejectsStaleVersion(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	first := filledCart(t, "u1")
	require.NoError(t, store.Save(ctx, first))

	stale := filledCart(t, "u1")
	assert.ErrorIs(t, store.Save(ctx, stale), domain.ErrVersionConflict)
	assert.Equal(t, int64(0), stale.Version)

	loaded, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, loaded))
	assert.Equal(t, int64(2), loaded.Version)

	assert.ErrorIs(t, store.Save(ctx, first), domain.ErrVersionConflict)
}

func TestCartStore_ExpiredCartReadsAsMissing(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, filledCart(t, "u1")))

	store.Now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err := store.Load(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)

	fresh := domain.NewCart("u1", store.Now())
	assert.NoError(t, store.Save(ctx, fresh))
}

func TestCartStore_InactiveCartReadsAsMissing(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	cart := filledCart(t, "u1")
	require.NoError(t, store.Save(ctx, cart))

	cart.Clear(time.Now())
	require.NoError(t, store.Save(ctx, cart))

	_, err := store.Load(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestCartStore_DeleteIsIdempotent(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, filledCart(t, "u1")))

	assert.NoError(t, store.Delete(ctx, "u1"))
	assert.NoError(t, store.Delete(ctx, "u1"))
	assert.False(t, mr.Exists("cart:u1"))
}

func TestCartStore_RedisDownIsTransient(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	cart := filledCart(t, "u1")
	mr.Close()

	_, err := store.Load(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrDownstreamUnavailable)
	assert.ErrorIs(t, store.Save(ctx, cart), domain.ErrDownstreamUnavailable)
	assert.ErrorIs(t, store.Delete(ctx, "u1"), domain.ErrDownstreamUnavailable)
	assert.Zero(t, cart.Version)
}

func TestCartStore_CorruptRecordIsNotTransient(t *testing.T) {
	store, mr := setupStore(t)
	require.NoError(t, mr.Set("cart:u1", "{not json"))

	_, err := store.Load(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDownstreamUnavailable)
}
