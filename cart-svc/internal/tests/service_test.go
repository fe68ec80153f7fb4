package tests

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"foodexpress/cart-svc/internal/client"
	"foodexpress/cart-svc/internal/domain"
	"foodexpress/cart-svc/internal/mocks"
	"foodexpress/cart-svc/internal/service"
	"foodexpress/cart-svc/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 10, 18, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func existingCart(restaurantID string) func(context.Context, string) (*domain.Cart, error) {
	return func(ctx context.Context, userID string) (*domain.Cart, error) {
		cart := domain.NewCart(userID, fixedNow)
		err := cart.AddItem(restaurantID, "Existing Place", domain.CartItem{
			MenuItemID: "m1",
			Name:       "Burger",
			Price:      decimal.RequireFromString("8.00"),
			Quantity:   1,
		}, fixedNow, domain.DefaultPolicy())
		cart.Version = 1
		return cart, err
	}
}

func validInput() service.AddItemInput {
	return service.AddItemInput{
		RestaurantID: "r1",
		MenuItemID:   "m2",
		ItemName:     "Fries",
		Price:        decimal.RequireFromString("3.50"),
		Quantity:     2,
	}
}

func TestCartService_AddItem(t *testing.T) {
	store := mocks.NewCartStore(t)
	catalog := mocks.NewCatalog(t)

	svc := service.NewCartService(store, catalog, domain.DefaultPolicy(), 2).WithClock(clock)

	ctx := context.Background()

	tests := []struct {
		name          string
		input         service.AddItemInput
		prepareMocks  func()
		expectedError error
		expectedTotal string
	}{
		{
			name:  "success_creates_cart",
			input: validInput(),
			prepareMocks: func() {
				catalog.On("CheckUser", ctx, "u1").Return(nil).Once()
				catalog.On("GetRestaurant", ctx, "r1").Return(&client.Restaurant{ID: "r1", Name: "Pizza Place"}, nil).Once()
				store.On("Load", ctx, "u1").Return(nil, domain.ErrCartNotFound).Once()
				store.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil).Once()
			},
			expectedTotal: "7.00",
		},
		{
			name:  "success_existing_cart",
			input: validInput(),
			prepareMocks: func() {
				catalog.On("CheckUser", ctx, "u1").Return(nil).Once()
				catalog.On("GetRestaurant", ctx, "r1").Return(&client.Restaurant{ID: "r1"}, nil).Once()
				store.On("Load", ctx, "u1").Return(existingCart("r1")).Once()
				store.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil).Once()
			},
			expectedTotal: "15.00",
		},
		{
			name: "error_invalid_price",
			input: service.AddItemInput{
				RestaurantID: "r1", MenuItemID: "m2", ItemName: "Fries", Price: decimal.Zero, Quantity: 1,
			},
			prepareMocks:  func() {},
			expectedError: domain.ErrInvalidItem,
		},
		{
			name: "error_quantity_out_of_range",
			input: service.AddItemInput{
				RestaurantID: "r1", MenuItemID: "m2", ItemName: "Fries", Price: decimal.NewFromInt(1), Quantity: 100,
			},
			prepareMocks:  func() {},
			expectedError: domain.ErrQuantityOutOfRange,
		},
		{
			name:  "error_restaurant_not_found",
			input: validInput(),
			prepareMocks: func() {
				catalog.On("CheckUser", ctx, "u1").Return(nil).Once()
				catalog.On("GetRestaurant", ctx, "r1").Return(nil, domain.ErrRestaurantNotFound).Once()
			},
			expectedError: domain.ErrRestaurantNotFound,
		},
		{
			name:  "error_user_service_down",
			input: validInput(),
			prepareMocks: func() {
				catalog.On("CheckUser", ctx, "u1").Return(domain.ErrDownstreamUnavailable).Once()
			},
			expectedError: domain.ErrDownstreamUnavailable,
		},
		{
			name:  "error_conflicting_restaurant",
			input: validInput(),
			prepareMocks: func() {
				catalog.On("CheckUser", ctx, "u1").Return(nil).Once()
				catalog.On("GetRestaurant", ctx, "r1").Return(&client.Restaurant{ID: "r1"}, nil).Once()
				store.On("Load", ctx, "u1").Return(existingCart("r9")).Once()
			},
			expectedError: domain.ErrConflictingRestaurant,
		},
		{
			name:  "success_after_version_conflict",
			input: validInput(),
			prepareMocks: func() {
				catalog.On("CheckUser", ctx, "u1").Return(nil).Once()
				catalog.On("GetRestaurant", ctx, "r1").Return(&client.Restaurant{ID: "r1"}, nil).Once()
				store.On("Load", ctx, "u1").Return(existingCart("r1")).Twice()
				store.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(domain.ErrVersionConflict).Once()
				store.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil).Once()
			},
			expectedTotal: "15.00",
		},
		{
			name:  "error_version_conflict_exhausted",
			input: validInput(),
			prepareMocks: func() {
				catalog.On("CheckUser", ctx, "u1").Return(nil).Once()
				catalog.On("GetRestaurant", ctx, "r1").Return(&client.Restaurant{ID: "r1"}, nil).Once()
				store.On("Load", ctx, "u1").Return(existingCart("r1")).Times(3)
				store.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(domain.ErrVersionConflict).Times(3)
			},
			expectedError: domain.ErrVersionConflict,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.prepareMocks()
			cart, err := svc.AddItem(ctx, "u1", testCase.input)
			if testCase.expectedError != nil {
				assert.ErrorIs(t, err, testCase.expectedError)
				assert.Nil(t, cart)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "r1", cart.RestaurantID)
			assert.True(t, cart.TotalAmount.Equal(decimal.RequireFromString(testCase.expectedTotal)),
				"got total %s", cart.TotalAmount)
			assert.Equal(t, fixedNow.Add(domain.DefaultTTL), cart.ExpiresAt)
		})
	}
}

func TestCartService_UpdateItemQuantity(t *testing.T) {
	store := mocks.NewCartStore(t)
	svc := service.NewCartService(store, mocks.NewCatalog(t), domain.DefaultPolicy(), 2).WithClock(clock)
	ctx := context.Background()

	store.On("Load", ctx, "u1").Return(existingCart("r1")).Once()
	store.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil).Once()

	cart, err := svc.UpdateItemQuantity(ctx, "u1", "m1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.TotalItems)
	assert.True(t, cart.TotalAmount.Equal(decimal.NewFromInt(24)))

	store.On("Load", ctx, "u1").Return(existingCart("r1")).Once()
	_, err = svc.UpdateItemQuantity(ctx, "u1", "missing", 3)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	store.On("Load", ctx, "u2").Return(nil, domain.ErrCartNotFound).Once()
	_, err = svc.UpdateItemQuantity(ctx, "u2", "m1", 3)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestCartService_RemoveItem(t *testing.T) {
	store := mocks.NewCartStore(t)
	svc := service.NewCartService(store, mocks.NewCatalog(t), domain.DefaultPolicy(), 2).WithClock(clock)
	ctx := context.Background()

	store.On("Load", ctx, "u1").Return(existingCart("r1")).Once()
	store.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil).Once()

	cart, err := svc.RemoveItem(ctx, "u1", "m1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Empty(t, cart.RestaurantID)

	// already gone: reported as success without a write
	store.On("Load", ctx, "u1").Return(existingCart("r1")).Once()
	cart, err = svc.RemoveItem(ctx, "u1", "never-added")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCartService_ClearCart(t *testing.T) {
	store := mocks.NewCartStore(t)
	svc := service.NewCartService(store, mocks.NewCatalog(t), domain.DefaultPolicy(), 2).WithClock(clock)
	ctx := context.Background()

	store.On("Load", ctx, "u1").Return(existingCart("r1")).Once()
	store.On("Save", ctx, mock.MatchedBy(func(c *domain.Cart) bool {
		return !c.Active && c.IsEmpty()
	})).Return(nil).Once()
	assert.NoError(t, svc.ClearCart(ctx, "u1"))

	store.On("Load", ctx, "u2").Return(nil, domain.ErrCartNotFound).Once()
	store.On("Delete", ctx, "u2").Return(nil).Once()
	assert.NoError(t, svc.ClearCart(ctx, "u2"))
}

func TestCartService_ClearCartThenGetIsNotFound(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := storage.NewCartStore(rdb, domain.DefaultTTL)
	catalog := client.NewCatalogClient("", "", time.Second, nil)
	svc := service.NewCartService(store, catalog, domain.DefaultPolicy(), 2)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", service.AddItemInput{
		RestaurantID: "r1", MenuItemID: "A", ItemName: "Margherita", Price: decimal.RequireFromString("10.00"), Quantity: 2,
	})
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, "u1", service.AddItemInput{
		RestaurantID: "r1", MenuItemID: "B", ItemName: "Cola", Price: decimal.RequireFromString("5.00"), Quantity: 1,
	})
	require.NoError(t, err)
	assert.True(t, cart.TotalAmount.Equal(decimal.RequireFromString("25.00")))

	require.NoError(t, svc.ClearCart(ctx, "u1"))

	_, err = svc.GetCart(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)

	cart, err = svc.AddItem(ctx, "u1", service.AddItemInput{
		RestaurantID: "r2", MenuItemID: "C", ItemName: "Soup", Price: decimal.RequireFromString("4.00"), Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "r2", cart.RestaurantID)
	assert.Len(t, cart.Items, 1)

	require.NoError(t, svc.ClearCart(ctx, "nobody"))
}

func TestCartService_ConcurrentAddsAreNotLost(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := storage.NewCartStore(rdb, domain.DefaultTTL)
	catalog := client.NewCatalogClient("", "", time.Second, nil)
	svc := service.NewCartService(store, catalog, domain.DefaultPolicy(), 50)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.AddItem(ctx, "u1", service.AddItemInput{
				RestaurantID: "r1",
				MenuItemID:   "m" + strconv.Itoa(i),
				ItemName:     "Dish",
				Price:        decimal.NewFromInt(2),
				Quantity:     1,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	cart, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, writers)
	assert.Equal(t, writers, cart.TotalItems)
	assert.True(t, cart.TotalAmount.Equal(decimal.NewFromInt(2*writers)))
	assert.Equal(t, int64(writers), cart.Version)
}
