package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles short-lived distributed locks in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireCoordLock attempts to take the creation lock for a coordinate pair.
// Returns true if the lock was acquired, false if another create holds it.
// Serializes concurrent vehicle creation at identical coordinates, which the
// duplicate check alone cannot do.
func (s *LockStore) AcquireCoordLock(ctx context.Context, lat, lng float64, ttl time.Duration) (bool, error) {
	key := coordLockKey(lat, lng)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseCoordLock releases the creation lock for a coordinate pair.
func (s *LockStore) ReleaseCoordLock(ctx context.Context, lat, lng float64) error {
	return s.client.Del(ctx, coordLockKey(lat, lng)).Err()
}

func coordLockKey(lat, lng float64) string {
	return fmt.Sprintf("lock:coords:%.6f:%.6f", lat, lng)
}
