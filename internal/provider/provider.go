// Package provider defines the external collaborators of the reward engine
// (location, scoring, and trip pricing) and simulated implementations of them.
package provider

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"tourguide/internal/domain"
)

// LocationProvider returns user positions and the attraction catalog.
type LocationProvider interface {
	CurrentPosition(ctx context.Context, userID uuid.UUID) (domain.VisitedLocation, error)
	Attractions(ctx context.Context) ([]domain.Attraction, error)
}

// ScoringProvider returns the reward points a user earns for an attraction.
type ScoringProvider interface {
	PointsFor(ctx context.Context, attractionID, userID uuid.UUID) (int, error)
}

// PriceTripRequest contains the parameters for pricing a trip.
type PriceTripRequest struct {
	APIKey           string
	UserID           uuid.UUID
	Adults           int
	Children         int
	DurationDays     int
	CumulativePoints int
}

// PricingProvider converts points and preferences into priced trip offers.
type PricingProvider interface {
	PriceTrip(ctx context.Context, req PriceTripRequest) ([]domain.Offer, error)
}

// Latency configures simulated round-trip delay.
type Latency struct {
	Min time.Duration
	Max time.Duration
}

// wait sleeps for a random duration in [Min, Max] or until ctx is done.
func (l Latency) wait(ctx context.Context) error {
	d := l.Min
	if l.Max > l.Min {
		d += time.Duration(rand.Int64N(int64(l.Max - l.Min)))
	}
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
