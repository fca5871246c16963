package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"tourguide/internal/domain"
)

const userLocationKey = "users:locations"

// Redis geo indexes reject latitudes beyond the Web Mercator limit.
const maxGeoLatitude = 85.05112878

// UserLocation represents a user's latest known position.
type UserLocation struct {
	UserID string
	Lat    float64
	Lng    float64
}

// LocationStore mirrors users' latest positions into a Redis geo index.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdateLocation stores a user's location using GEOADD.
func (s *LocationStore) UpdateLocation(ctx context.Context, userID string, loc domain.Coordinate) error {
	lat := loc.Latitude
	if lat > maxGeoLatitude {
		lat = maxGeoLatitude
	} else if lat < -maxGeoLatitude {
		lat = -maxGeoLatitude
	}
	return s.client.GeoAdd(ctx, userLocationKey, &redis.GeoLocation{
		Name:      userID,
		Longitude: loc.Longitude,
		Latitude:  lat,
	}).Err()
}

// AllLocations returns every indexed user position.
func (s *LocationStore) AllLocations(ctx context.Context) ([]UserLocation, error) {
	members, err := s.client.ZRange(ctx, userLocationKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	positions, err := s.client.GeoPos(ctx, userLocationKey, members...).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]UserLocation, 0, len(members))
	for i, pos := range positions {
		if pos == nil {
			continue
		}
		locations = append(locations, UserLocation{
			UserID: members[i],
			Lat:    pos.Latitude,
			Lng:    pos.Longitude,
		})
	}
	return locations, nil
}

// RemoveLocation removes a user's location from the geo index.
func (s *LocationStore) RemoveLocation(ctx context.Context, userID string) error {
	return s.client.ZRem(ctx, userLocationKey, userID).Err()
}
