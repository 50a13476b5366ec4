package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"ecorueda/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// VehicleStatsTTL bounds staleness of the fleet availability counts, which
// shift with every reserve/release.
const VehicleStatsTTL = 30 * time.Second

const vehicleStatsKey = "cache:vehicles:stats"

// GetVehicleStats retrieves cached fleet stats. Returns nil on a miss.
func (s *CacheStore) GetVehicleStats(ctx context.Context) (*domain.VehicleStats, error) {
	data, err := s.client.Get(ctx, vehicleStatsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var stats domain.VehicleStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}

// SetVehicleStats caches fleet stats.
func (s *CacheStore) SetVehicleStats(ctx context.Context, stats *domain.VehicleStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, vehicleStatsKey, data, VehicleStatsTTL).Err()
}
