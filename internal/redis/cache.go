package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"tourguide/internal/domain"
)

// CatalogCacheTTL is the default lifetime of the shared attraction catalog.
const CatalogCacheTTL = 10 * time.Minute

const attractionCatalogKey = "cache:attractions"

// CacheStore handles shared caching of the attraction catalog in Redis.
type CacheStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheStore creates a new CacheStore. A non-positive ttl uses CatalogCacheTTL.
func NewCacheStore(client *redis.Client, ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = CatalogCacheTTL
	}
	return &CacheStore{client: client, ttl: ttl}
}

// CachedAttraction is the cached form of an attraction.
type CachedAttraction struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// GetAttractions retrieves the catalog from cache. A miss returns nil, nil.
func (s *CacheStore) GetAttractions(ctx context.Context) ([]domain.Attraction, error) {
	data, err := s.client.Get(ctx, attractionCatalogKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached []CachedAttraction
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	attractions := make([]domain.Attraction, 0, len(cached))
	for _, c := range cached {
		a, err := c.toDomain()
		if err != nil {
			return nil, err
		}
		attractions = append(attractions, a)
	}
	return attractions, nil
}

// SetAttractions stores the catalog in cache.
func (s *CacheStore) SetAttractions(ctx context.Context, attractions []domain.Attraction) error {
	cached := make([]CachedAttraction, 0, len(attractions))
	for _, a := range attractions {
		cached = append(cached, CachedAttraction{
			ID:        a.ID.String(),
			Name:      a.Name,
			City:      a.City,
			State:     a.State,
			Latitude:  a.Location.Latitude,
			Longitude: a.Location.Longitude,
		})
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, attractionCatalogKey, data, s.ttl).Err()
}

// InvalidateAttractions removes the catalog from cache.
func (s *CacheStore) InvalidateAttractions(ctx context.Context) error {
	return s.client.Del(ctx, attractionCatalogKey).Err()
}
