package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it still holds our token, so an
// expired lock re-acquired by another request is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type PlacementLock struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewPlacementLock(client *redis.Client, ttl time.Duration) *PlacementLock {
	return &PlacementLock{Client: client, TTL: ttl}
}

func (l *PlacementLock) LockKey(userID string) string {
	return "placement:" + userID
}

// Acquire returns a release token, or ok=false when another placement for
// the same user holds the lock.
func (l *PlacementLock) Acquire(ctx context.Context, userID string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.Client.SetNX(ctx, l.LockKey(userID), token, l.TTL).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *PlacementLock) Release(ctx context.Context, userID, token string) error {
	return releaseScript.Run(ctx, l.Client, []string{l.LockKey(userID)}, token).Err()
}
