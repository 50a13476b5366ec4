package redis

import (
	"context"
	"time"

	"ecorueda/internal/domain"
)

// CoordLockInterface defines the interface for coordinate creation locks.
type CoordLockInterface interface {
	AcquireCoordLock(ctx context.Context, lat, lng float64, ttl time.Duration) (bool, error)
	ReleaseCoordLock(ctx context.Context, lat, lng float64) error
}

// StatsCacheInterface defines the interface for fleet stats caching.
type StatsCacheInterface interface {
	GetVehicleStats(ctx context.Context) (*domain.VehicleStats, error)
	SetVehicleStats(ctx context.Context, stats *domain.VehicleStats) error
}

// Ensure concrete types implement interfaces.
var (
	_ CoordLockInterface  = (*LockStore)(nil)
	_ StatsCacheInterface = (*CacheStore)(nil)
)
