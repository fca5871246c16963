package service

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"tourguide/internal/domain"
	"tourguide/internal/provider"
	"tourguide/internal/redis"
)

const catalogCacheKey = "attractions"

// AttractionSource returns the attraction catalog.
type AttractionSource interface {
	Attractions(ctx context.Context) ([]domain.Attraction, error)
}

// CatalogService serves the attraction catalog through an in-process cache
// and an optional shared Redis cache in front of the location provider.
type CatalogService struct {
	provider provider.LocationProvider
	local    *cache.Cache
	shared   redis.CacheStoreInterface // optional
	timeout  time.Duration
	logger   *zap.Logger
}

// NewCatalogService creates a new CatalogService. A nil shared store disables the L2 cache.
func NewCatalogService(
	locations provider.LocationProvider,
	shared redis.CacheStoreInterface,
	ttl time.Duration,
	timeout time.Duration,
	logger *zap.Logger,
) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = redis.CatalogCacheTTL
	}
	return &CatalogService{
		provider: locations,
		local:    cache.New(ttl, 2*ttl),
		shared:   shared,
		timeout:  timeout,
		logger:   logger,
	}
}

// Attractions returns the catalog, fetching it from the provider on a cache miss.
// The returned slice is owned by the caller.
func (s *CatalogService) Attractions(ctx context.Context) ([]domain.Attraction, error) {
	if cached, ok := s.local.Get(catalogCacheKey); ok {
		return cloneAttractions(cached.([]domain.Attraction)), nil
	}

	if s.shared != nil {
		attractions, err := s.shared.GetAttractions(ctx)
		if err != nil {
			s.logger.Warn("shared catalog cache read failed", zap.Error(err))
		} else if len(attractions) > 0 {
			s.local.Set(catalogCacheKey, attractions, cache.DefaultExpiration)
			return cloneAttractions(attractions), nil
		}
	}

	fetchCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	attractions, err := s.provider.Attractions(fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: attractions: %w", ErrProviderUnavailable, err)
	}

	s.local.Set(catalogCacheKey, attractions, cache.DefaultExpiration)
	if s.shared != nil {
		if err := s.shared.SetAttractions(ctx, attractions); err != nil {
			s.logger.Warn("shared catalog cache write failed", zap.Error(err))
		}
	}
	return cloneAttractions(attractions), nil
}

// Invalidate drops the in-process copy of the catalog.
func (s *CatalogService) Invalidate() {
	s.local.Delete(catalogCacheKey)
}

func cloneAttractions(in []domain.Attraction) []domain.Attraction {
	out := make([]domain.Attraction, len(in))
	copy(out, in)
	return out
}
