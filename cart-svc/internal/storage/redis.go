package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"foodexpress/cart-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

var errCorruptCart = errors.New("failed to decode cart")

// CartStore keeps one JSON document per user under cart:{userID}.
type CartStore struct {
	Client *redis.Client
	// TTL is applied to keys whose cart carries no expiry yet.
	TTL time.Duration
	Now func() time.Time
}

func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{Client: client, TTL: ttl, Now: time.Now}
}

func (s *CartStore) CartKey(userID string) string {
	return "cart:" + userID
}

func (s *CartStore) live(cart *domain.Cart) bool {
	return cart.Active && !cart.IsExpired(s.Now())
}

func (s *CartStore) Load(ctx context.Context, userID string) (*domain.Cart, error) {
	raw, err := s.Client.Get(ctx, s.CartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCartNotFound
	}
	if err != nil {
		return nil, unavailable("load cart", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("%w: %w", errCorruptCart, err)
	}
	if !s.live(&cart) {
		return nil, domain.ErrCartNotFound
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

// Save writes cart only if the stored version still equals cart.Version.
// A missing, inactive or expired record counts as version 0. On success
// cart.Version is advanced to the stored version.
func (s *CartStore) Save(ctx context.Context, cart *domain.Cart) error {
	key := s.CartKey(cart.UserID)
	next := cart.Snapshot()
	next.Version = cart.Version + 1
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	txf := func(tx *redis.Tx) error {
		current, err := s.storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if current != cart.Version {
			return domain.ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next.ExpiresAt.IsZero() {
				pipe.Set(ctx, key, payload, s.TTL)
			} else {
				pipe.Set(ctx, key, payload, 0)
				pipe.PExpireAt(ctx, key, next.ExpiresAt)
			}
			return nil
		})
		return err
	}

	err = s.Client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return domain.ErrVersionConflict
	}
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) || errors.Is(err, domain.ErrDownstreamUnavailable) ||
			errors.Is(err, errCorruptCart) {
			return err
		}
		return unavailable("save cart", err)
	}

	cart.Version = next.Version
	return nil
}

func (s *CartStore) storedVersion(ctx context.Context, tx *redis.Tx, key string) (int64, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("read cart version", err)
	}

	var stored domain.Cart
	if err := json.Unmarshal(raw, &stored); err != nil {
		return 0, fmt.Errorf("%w: %w", errCorruptCart, err)
	}
	if !s.live(&stored) {
		return 0, nil
	}
	return stored.Version, nil
}

// Delete is idempotent.
func (s *CartStore) Delete(ctx context.Context, userID string) error {
	if err := s.Client.Del(ctx, s.CartKey(userID)).Err(); err != nil {
		return unavailable("delete cart", err)
	}
	return nil
}

// unavailable marks a Redis round trip failure as transient.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", domain.ErrDownstreamUnavailable, op, err)
}
