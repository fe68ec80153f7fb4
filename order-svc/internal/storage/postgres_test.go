package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodexpress/order-svc/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func sampleOrder() *domain.Order {
	cart := &domain.Cart{
		UserID:         "u1",
		RestaurantID:   "r1",
		RestaurantName: "Pizza Place",
		Items: []domain.CartItem{
			{MenuItemID: "A", Name: "Margherita", Price: decimal.RequireFromString("10.00"), Quantity: 2, Subtotal: decimal.RequireFromString("20.00")},
			{MenuItemID: "B", Name: "Cola", Price: decimal.RequireFromString("5.00"), Quantity: 1, Subtotal: decimal.RequireFromString("5.00")},
		},
		TotalAmount: decimal.RequireFromString("25.00"),
		TotalItems:  3,
		CreatedAt:   time.Unix(1700000000, 0),
		Version:     2,
	}
	return domain.NewOrder("trk-1", cart, domain.PaymentUPI, domain.PlaceOrderInput{DeliveryAddress: "1 Main St"}, time.Now())
}

var orderRowColumns = []string{
	"id", "tracking_number", "user_id", "restaurant_id", "restaurant_name", "total_items", "total_amount",
	"status", "payment_method", "payment_status", "delivery_address", "delivery_lat", "delivery_lng",
	"cart_ref", "created_at", "updated_at",
}

func TestPostgresRepository_CreateOrder(t *testing.T) {
	repo, mock := setupRepo(t)
	order := sampleOrder()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("trk-1", "u1", "r1", "Pizza Place", 3, sqlmock.AnyArg(), "CREATED", "UPI", "PENDING",
			"1 Main St", nil, nil, order.CartRef).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(42), "A", "Margherita", sqlmock.AnyArg(), 2, sqlmock.AnyArg(), "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(42), "B", "Cola", sqlmock.AnyArg(), 1, sqlmock.AnyArg(), "").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateOrder(context.Background(), order))
	assert.Equal(t, int64(42), order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateOrder_Errors(t *testing.T) {
	tests := []struct {
		name          string
		dbErr         error
		expectedError error
	}{
		{
			name:          "unique_violation",
			dbErr:         &pq.Error{Code: "23505", Constraint: "orders_user_cart_ref_key"},
			expectedError: domain.ErrDuplicateOrder,
		},
		{
			name:          "connection_failure",
			dbErr:         &pq.Error{Code: "08006"},
			expectedError: domain.ErrStorageUnavailable,
		},
		{
			name:          "deadline",
			dbErr:         context.DeadlineExceeded,
			expectedError: domain.ErrStorageUnavailable,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo, mock := setupRepo(t)
			mock.ExpectBegin()
			mock.ExpectQuery("INSERT INTO orders").WillReturnError(testCase.dbErr)
			mock.ExpectRollback()

			err := repo.CreateOrder(context.Background(), sampleOrder())
			assert.ErrorIs(t, err, testCase.expectedError)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepository_CreateOrder_ItemFailureRollsBack(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))
	mock.ExpectExec("INSERT INTO order_items").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	assert.Error(t, repo.CreateOrder(context.Background(), sampleOrder()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByTrackingNumber(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()

	mock.ExpectQuery("FROM orders WHERE tracking_number").
		WithArgs("trk-1").
		WillReturnRows(sqlmock.NewRows(orderRowColumns).AddRow(
			int64(42), "trk-1", "u1", "r1", "Pizza Place", 3, "25.00", "CREATED", "UPI", "PENDING",
			"1 Main St", nil, 12.5, "u1:1:2", now, now))
	mock.ExpectQuery("FROM order_items").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "menu_item_id", "name", "price", "quantity", "subtotal", "image_url"}).
			AddRow(int64(42), "A", "Margherita", "10.00", 2, "20.00", "").
			AddRow(int64(42), "B", "Cola", "5.00", 1, "5.00", ""))

	order, err := repo.GetByTrackingNumber(context.Background(), "trk-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, domain.StatusCreated, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("25")))
	assert.Nil(t, order.DeliveryLat)
	require.NotNil(t, order.DeliveryLng)
	assert.Equal(t, 12.5, *order.DeliveryLng)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "B", order.Items[1].MenuItemID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByTrackingNumber_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)
	mock.ExpectQuery("FROM orders WHERE tracking_number").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(orderRowColumns))

	_, err := repo.GetByTrackingNumber(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestPostgresRepository_ListByUser(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()

	mock.ExpectQuery("FROM orders\\s+WHERE user_id = \\$1").
		WithArgs("u1", 20).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow(int64(2), "trk-2", "u1", "r1", "", 1, "5.00", "CONFIRMED", "UPI", "PENDING", "", nil, nil, "u1:1:3", now, now).
			AddRow(int64(1), "trk-1", "u1", "r1", "", 3, "25.00", "DELIVERED", "UPI", "COMPLETED", "", nil, nil, "u1:1:2", now, now))
	mock.ExpectQuery("FROM order_items").
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "menu_item_id", "name", "price", "quantity", "subtotal", "image_url"}).
			AddRow(int64(1), "A", "Margherita", "10.00", 2, "20.00", "").
			AddRow(int64(2), "B", "Cola", "5.00", 1, "5.00", ""))

	orders, err := repo.ListByUser(context.Background(), "u1", 20)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "trk-2", orders[0].TrackingNumber)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "B", orders[0].Items[0].MenuItemID)
	assert.Len(t, orders[1].Items, 1)
}

func TestPostgresRepository_UpdateStatus(t *testing.T) {
	repo, mock := setupRepo(t)
	ctx := context.Background()

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("CONFIRMED", "trk-1", "CREATED").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdateStatus(ctx, "trk-1", domain.StatusCreated, domain.StatusConfirmed))

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("CONFIRMED", "trk-1", "CREATED").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "trk-1", domain.StatusCreated, domain.StatusConfirmed), domain.ErrInvalidTransition)
}

func TestPostgresRepository_FollowUps(t *testing.T) {
	repo, mock := setupRepo(t)
	ctx := context.Background()
	now := time.Now()
	lease := now.Add(time.Minute)

	mock.ExpectExec("INSERT INTO saga_followups").
		WithArgs(domain.FollowUpClearCart, "u1", "trk-1", "u1:1700000000000000000:4", sqlmock.AnyArg(), 0, "pending", "cart down", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.EnqueueFollowUp(ctx, domain.FollowUp{
		Kind: domain.FollowUpClearCart, UserID: "u1", TrackingNumber: "trk-1", CartRef: "u1:1700000000000000000:4", LastError: "cart down",
	}))

	mock.ExpectQuery("UPDATE saga_followups SET next_attempt_at").
		WithArgs(now, lease, "pending", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "user_id", "tracking_number", "cart_ref", "payload", "attempts", "last_error"}).
			AddRow(int64(1), "clear_cart", "u1", "trk-1", "u1:1700000000000000000:4", nil, 0, "cart down"))
	claimed, err := repo.ClaimDueFollowUps(ctx, now, lease, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, domain.FollowUpClearCart, claimed[0].Kind)
	assert.Equal(t, "u1:1700000000000000000:4", claimed[0].CartRef)
	assert.Equal(t, lease, claimed[0].NextAttemptAt)

	mock.ExpectExec("UPDATE saga_followups SET status").
		WithArgs("done", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.CompleteFollowUp(ctx, 1))

	mock.ExpectExec("UPDATE saga_followups SET attempts").
		WithArgs(2, lease, "still down", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.RescheduleFollowUp(ctx, 1, 2, lease, "still down"))

	mock.ExpectExec("UPDATE saga_followups SET status").
		WithArgs("abandoned", 10, "gave up", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.AbandonFollowUp(ctx, 1, 10, "gave up"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_EnsureSchema(t *testing.T) {
	repo, mock := setupRepo(t)
	for _, prefix := range []string{"CREATE", "CREATE", "CREATE", "CREATE", "CREATE", "ALTER", "CREATE"} {
		mock.ExpectExec(prefix).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	assert.NoError(t, repo.EnsureSchema())
	assert.NoError(t, mock.ExpectationsWereMet())
}
