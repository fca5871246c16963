package redis

import (
	"context"
	"time"

	"tourguide/internal/domain"
)

// LocationStoreInterface defines the interface for user location operations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, userID string, loc domain.Coordinate) error
	AllLocations(ctx context.Context) ([]UserLocation, error)
	RemoveLocation(ctx context.Context, userID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireTrackerLock(ctx context.Context, ttl time.Duration) (bool, error)
	ReleaseTrackerLock(ctx context.Context) error
}

// CacheStoreInterface defines the interface for the shared catalog cache.
type CacheStoreInterface interface {
	GetAttractions(ctx context.Context) ([]domain.Attraction, error)
	SetAttractions(ctx context.Context, attractions []domain.Attraction) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
	_ CacheStoreInterface    = (*CacheStore)(nil)
)
