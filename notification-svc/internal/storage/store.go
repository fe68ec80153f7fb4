package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultDedupTTL = 7 * 24 * time.Hour

// Store remembers which orders already had their notification sent.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func SentKey(trackingNumber string) string {
	return "notification:sent:" + trackingNumber
}

// MarkSent returns false when the order was already marked.
func (s *Store) MarkSent(ctx context.Context, trackingNumber string) (bool, error) {
	return s.rdb.SetNX(ctx, SentKey(trackingNumber), time.Now().Unix(), s.ttl).Result()
}

func (s *Store) Unmark(ctx context.Context, trackingNumber string) error {
	return s.rdb.Del(ctx, SentKey(trackingNumber)).Err()
}
