package provider_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourguide/internal/domain"
	"tourguide/internal/provider"
)

func TestDefaultAttractions_StableIDs(t *testing.T) {
	first := provider.DefaultAttractions()
	second := provider.DefaultAttractions()

	require.Len(t, first, 26)
	seen := make(map[uuid.UUID]bool)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.False(t, seen[first[i].ID], "duplicate id for %s", first[i].Name)
		seen[first[i].ID] = true
	}
}

func TestSimulatedGPS(t *testing.T) {
	ctx := context.Background()
	gps := provider.NewSimulatedGPS(provider.Latency{})
	userID := uuid.New()

	visit, err := gps.CurrentPosition(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, visit.UserID)
	_, err = domain.NewCoordinate(visit.Location.Latitude, visit.Location.Longitude)
	assert.NoError(t, err)

	attractions, err := gps.Attractions(ctx)
	require.NoError(t, err)
	attractions[0].Name = "mutated"
	again, _ := gps.Attractions(ctx)
	assert.NotEqual(t, "mutated", again[0].Name)
}

func TestSimulatedGPS_LatencyHonoursContext(t *testing.T) {
	gps := provider.NewSimulatedGPS(provider.Latency{Min: time.Hour, Max: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := gps.CurrentPosition(ctx, uuid.New())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSimulatedRewardCentral_PointsInRange(t *testing.T) {
	scorer := provider.NewSimulatedRewardCentral(provider.Latency{})
	for range 100 {
		points, err := scorer.PointsFor(context.Background(), uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, points, 1)
		assert.LessOrEqual(t, points, 1000)
	}
}

func TestSimulatedTripPricer(t *testing.T) {
	pricer := provider.NewSimulatedTripPricer(provider.Latency{})

	_, err := pricer.PriceTrip(context.Background(), provider.PriceTripRequest{})
	assert.ErrorIs(t, err, provider.ErrInvalidAPIKey)

	offers, err := pricer.PriceTrip(context.Background(), provider.PriceTripRequest{
		APIKey:           "test-server-api-key",
		UserID:           uuid.New(),
		Adults:           2,
		DurationDays:     3,
		CumulativePoints: 1_000_000,
	})
	require.NoError(t, err)
	require.Len(t, offers, 5)

	names := make(map[string]bool)
	for _, o := range offers {
		assert.False(t, names[o.ProviderName], "duplicate provider %s", o.ProviderName)
		names[o.ProviderName] = true
		assert.GreaterOrEqual(t, o.Price, 0.0)
	}
}
