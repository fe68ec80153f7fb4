package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"foodexpress/order-svc/internal/domain"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

const orderColumns = `id, tracking_number, user_id, restaurant_id, COALESCE(restaurant_name, ''),
		total_items, total_amount, status, payment_method, payment_status,
		COALESCE(delivery_address, ''), delivery_lat, delivery_lng, cart_ref, created_at, updated_at`

// classify maps driver errors onto domain sentinels: unique violations
// become ErrDuplicateOrder, connection-level failures ErrStorageUnavailable.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505":
			return fmt.Errorf("%w: %s", domain.ErrDuplicateOrder, pqErr.Constraint)
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "40",
			pqErr.Code.Class() == "53", pqErr.Code.Class() == "57":
			return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
		}
		return err
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return err
}

// CreateOrder writes the order row and every item in one transaction.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (tracking_number, user_id, restaurant_id, restaurant_name, total_items, total_amount,
			status, payment_method, payment_status, delivery_address, delivery_lat, delivery_lng, cart_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`, order.TrackingNumber, order.UserID, order.RestaurantID, order.RestaurantName, order.TotalItems,
		order.TotalAmount, order.Status, order.PaymentMethod, order.PaymentStatus, order.DeliveryAddress,
		order.DeliveryLat, order.DeliveryLng, order.CartRef,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return classify(err)
	}

	for _, item := range order.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, name, price, quantity, subtotal, image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, order.ID, item.MenuItemID, item.Name, item.Price, item.Quantity, item.Subtotal, item.ImageURL); err != nil {
			return classify(err)
		}
	}

	return classify(tx.Commit())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order    domain.Order
		lat, lng sql.NullFloat64
	)
	if err := row.Scan(&order.ID, &order.TrackingNumber, &order.UserID, &order.RestaurantID, &order.RestaurantName,
		&order.TotalItems, &order.TotalAmount, &order.Status, &order.PaymentMethod, &order.PaymentStatus,
		&order.DeliveryAddress, &lat, &lng, &order.CartRef, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}
	if lat.Valid {
		order.DeliveryLat = &lat.Float64
	}
	if lng.Valid {
		order.DeliveryLng = &lng.Float64
	}
	order.Items = []domain.OrderItem{}
	return &order, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, args ...any) (*domain.Order, error) {
	order, err := scanOrder(r.DB.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE "+where, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PostgresRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Order, error) {
	return r.getOne(ctx, "tracking_number = $1", trackingNumber)
}

func (r *PostgresRepository) GetByCartRef(ctx context.Context, userID, cartRef string) (*domain.Order, error) {
	return r.getOne(ctx, "user_id = $1 AND cart_ref = $2", userID, cartRef)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	result := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, *order)
	}
	return result, nil
}

func (r *PostgresRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, order := range orders {
		byID[order.ID] = order
		ids = append(ids, order.ID)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT order_id, menu_item_id, name, price, quantity, subtotal, COALESCE(image_url, '')
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID int64
			item    domain.OrderItem
		)
		if err := rows.Scan(&orderID, &item.MenuItemID, &item.Name, &item.Price, &item.Quantity, &item.Subtotal, &item.ImageURL); err != nil {
			return err
		}
		if order, ok := byID[orderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	return classify(rows.Err())
}

// UpdateStatus moves an order from one status to the next. The update is
// guarded by the expected current status so concurrent changes cannot skip
// a step.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, trackingNumber string, from, to domain.OrderStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE tracking_number = $2 AND status = $3`, to, trackingNumber, from)
	if err != nil {
		return classify(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *PostgresRepository) GetQRCode(ctx context.Context, trackingNumber string) ([]byte, error) {
	var qrCode []byte
	err := r.DB.QueryRowContext(ctx, "SELECT qr_code FROM orders WHERE tracking_number = $1", trackingNumber).Scan(&qrCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return qrCode, nil
}

func (r *PostgresRepository) SaveQRCode(ctx context.Context, trackingNumber string, qr []byte) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE orders SET qr_code = $1 WHERE tracking_number = $2`, qr, trackingNumber)
	return classify(err)
}

const (
	followUpPending   = "pending"
	followUpDone      = "done"
	followUpAbandoned = "abandoned"
)

func (r *PostgresRepository) EnqueueFollowUp(ctx context.Context, f domain.FollowUp) error {
	next := f.NextAttemptAt
	if next.IsZero() {
		next = time.Now()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO saga_followups (kind, user_id, tracking_number, cart_ref, payload, attempts, status, last_error, next_attempt_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		f.Kind, f.UserID, f.TrackingNumber, f.CartRef, f.Payload, f.Attempts, followUpPending, f.LastError, next)
	return classify(err)
}

// ClaimDueFollowUps leases up to limit due rows until leaseUntil. Rows
// locked by another worker are skipped.
func (r *PostgresRepository) ClaimDueFollowUps(ctx context.Context, now, leaseUntil time.Time, limit int) ([]domain.FollowUp, error) {
	rows, err := r.DB.QueryContext(ctx, `
		UPDATE saga_followups SET next_attempt_at = $2, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM saga_followups
			WHERE status = $3 AND next_attempt_at <= $1
			ORDER BY next_attempt_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, kind, user_id, tracking_number, cart_ref, payload, attempts, COALESCE(last_error, '')`,
		now, leaseUntil, followUpPending, limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var claimed []domain.FollowUp
	for rows.Next() {
		f := domain.FollowUp{NextAttemptAt: leaseUntil}
		if err := rows.Scan(&f.ID, &f.Kind, &f.UserID, &f.TrackingNumber, &f.CartRef, &f.Payload, &f.Attempts, &f.LastError); err != nil {
			return nil, err
		}
		claimed = append(claimed, f)
	}
	return claimed, classify(rows.Err())
}

func (r *PostgresRepository) CompleteFollowUp(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE saga_followups SET status = $1, updated_at = NOW() WHERE id = $2`, followUpDone, id)
	return classify(err)
}

func (r *PostgresRepository) RescheduleFollowUp(ctx context.Context, id int64, attempts int, next time.Time, lastErr string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE saga_followups SET attempts = $1, next_attempt_at = $2, last_error = $3, updated_at = NOW()
		WHERE id = $4`, attempts, next, lastErr, id)
	return classify(err)
}

func (r *PostgresRepository) AbandonFollowUp(ctx context.Context, id int64, attempts int, lastErr string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE saga_followups SET status = $1, attempts = $2, last_error = $3, updated_at = NOW()
		WHERE id = $4`, followUpAbandoned, attempts, lastErr, id)
	return classify(err)
}

func (r *PostgresRepository) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			tracking_number VARCHAR(64) NOT NULL UNIQUE,
			user_id VARCHAR(64) NOT NULL,
			restaurant_id VARCHAR(64) NOT NULL,
			restaurant_name VARCHAR(255),
			total_items INT NOT NULL,
			total_amount NUMERIC NOT NULL,
			status VARCHAR(32) NOT NULL,
			payment_method VARCHAR(32) NOT NULL,
			payment_status VARCHAR(32) NOT NULL,
			delivery_address TEXT,
			delivery_lat DOUBLE PRECISION,
			delivery_lng DOUBLE PRECISION,
			cart_ref VARCHAR(160) NOT NULL,
			qr_code BYTEA,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT orders_user_cart_ref_key UNIQUE (user_id, cart_ref)
		)`,
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at DESC)",
		`CREATE TABLE IF NOT EXISTS order_items (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			menu_item_id VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			price NUMERIC(10, 2) NOT NULL,
			quantity INT NOT NULL,
			subtotal NUMERIC(10, 2) NOT NULL,
			image_url TEXT
		)`,
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)",
		`CREATE TABLE IF NOT EXISTS saga_followups (
			id BIGSERIAL PRIMARY KEY,
			kind VARCHAR(32) NOT NULL,
			user_id VARCHAR(64) NOT NULL,
			tracking_number VARCHAR(64) NOT NULL,
			cart_ref VARCHAR(160) NOT NULL DEFAULT '',
			payload BYTEA,
			attempts INT NOT NULL DEFAULT 0,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			last_error TEXT,
			next_attempt_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		"ALTER TABLE saga_followups ADD COLUMN IF NOT EXISTS cart_ref VARCHAR(160) NOT NULL DEFAULT ''",
		"CREATE INDEX IF NOT EXISTS idx_saga_followups_due ON saga_followups (status, next_attempt_at)",
	}
	for _, stmt := range statements {
		if _, err := r.DB.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}
	return nil
}
