package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tourguide/internal/domain"
	"tourguide/internal/geo"
	"tourguide/internal/provider"
)

// DefaultClosestAttractions is the default number of attractions returned by ClosestAttractions.
const DefaultClosestAttractions = 5

// NearbyAttraction is an attraction and its distance from a location.
type NearbyAttraction struct {
	Attraction    domain.Attraction `json:"attraction"`
	DistanceMiles float64           `json:"distance_miles"`
}

// ClosestAttraction is a ranked attraction enriched with its current point value.
type ClosestAttraction struct {
	Attraction    domain.Attraction `json:"attraction"`
	DistanceMiles float64           `json:"distance_miles"`
	UserLocation  domain.Coordinate `json:"user_location"`
	RewardPoints  int               `json:"reward_points"`
}

// AttractionFinderConfig holds lookup settings for AttractionFinder.
type AttractionFinderConfig struct {
	DefaultK       int
	ScoringTimeout time.Duration
	Concurrency    int
}

// AttractionFinder ranks attractions by distance from a location.
type AttractionFinder struct {
	catalog AttractionSource
	scoring provider.ScoringProvider
	policy  *geo.ProximityPolicy
	cfg     AttractionFinderConfig
}

// NewAttractionFinder creates a new AttractionFinder.
func NewAttractionFinder(
	catalog AttractionSource,
	scoring provider.ScoringProvider,
	policy *geo.ProximityPolicy,
	cfg AttractionFinderConfig,
) *AttractionFinder {
	if policy == nil {
		policy = geo.DefaultProximityPolicy()
	}
	if cfg.DefaultK <= 0 {
		cfg.DefaultK = DefaultClosestAttractions
	}
	if cfg.ScoringTimeout <= 0 {
		cfg.ScoringTimeout = defaultScoringTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = cfg.DefaultK
	}
	return &AttractionFinder{
		catalog: catalog,
		scoring: scoring,
		policy:  policy,
		cfg:     cfg,
	}
}

// DefaultK returns the number of attractions returned when no k is requested.
func (f *AttractionFinder) DefaultK() int {
	return f.cfg.DefaultK
}

// NearbyAttractions returns the attractions within the discovery radius of
// the location, in catalog order.
func (f *AttractionFinder) NearbyAttractions(ctx context.Context, location domain.Coordinate) ([]NearbyAttraction, error) {
	attractions, err := f.catalog.Attractions(ctx)
	if err != nil {
		return nil, err
	}

	nearby := make([]NearbyAttraction, 0)
	for _, a := range attractions {
		d := geo.Distance(location, a.Location)
		if f.policy.WithinDiscovery(d) {
			nearby = append(nearby, NearbyAttraction{Attraction: a, DistanceMiles: d})
		}
	}
	return nearby, nil
}

// ClosestAttractions returns the k attractions closest to the location,
// nearest first, regardless of any radius. Ties keep catalog order.
// Each result carries the points the user would earn there; the call fails
// if any point lookup fails.
func (f *AttractionFinder) ClosestAttractions(ctx context.Context, userID uuid.UUID, location domain.Coordinate, k int) ([]ClosestAttraction, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	attractions, err := f.catalog.Attractions(ctx)
	if err != nil {
		return nil, err
	}

	ranked := make([]ClosestAttraction, 0, len(attractions))
	for _, a := range attractions {
		ranked = append(ranked, ClosestAttraction{
			Attraction:    a,
			DistanceMiles: geo.Distance(location, a.Location),
			UserLocation:  location,
		})
	}
	slices.SortStableFunc(ranked, func(a, b ClosestAttraction) int {
		switch {
		case a.DistanceMiles < b.DistanceMiles:
			return -1
		case a.DistanceMiles > b.DistanceMiles:
			return 1
		default:
			return 0
		}
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Concurrency)
	for i := range ranked {
		g.Go(func() error {
			lookupCtx, cancel := context.WithTimeout(gctx, f.cfg.ScoringTimeout)
			defer cancel()

			points, err := f.scoring.PointsFor(lookupCtx, ranked[i].Attraction.ID, userID)
			if err != nil {
				return fmt.Errorf("%w: scoring %s: %w", ErrProviderUnavailable, ranked[i].Attraction.Name, err)
			}
			ranked[i].RewardPoints = points
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ranked, nil
}
