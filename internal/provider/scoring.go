package provider

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"
)

// SimulatedRewardCentral is a ScoringProvider returning random points in [1, 1000].
type SimulatedRewardCentral struct {
	latency Latency
}

// NewSimulatedRewardCentral creates a SimulatedRewardCentral.
func NewSimulatedRewardCentral(latency Latency) *SimulatedRewardCentral {
	return &SimulatedRewardCentral{latency: latency}
}

// PointsFor returns a random point value for the visit.
func (s *SimulatedRewardCentral) PointsFor(ctx context.Context, attractionID, userID uuid.UUID) (int, error) {
	if err := s.latency.wait(ctx); err != nil {
		return 0, err
	}
	return rand.IntN(1000) + 1, nil
}
