package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tourguide/internal/domain"
	"tourguide/internal/provider"
	"tourguide/internal/repository"
)

const (
	internalUserVisits  = 3
	internalVisitMaxAge = 30 * 24 * time.Hour
)

// SeedInternalUsers registers count synthetic users, each with a short
// random visit history from the last 30 days. Existing names are skipped.
func (s *TourGuideService) SeedInternalUsers(ctx context.Context, count int) (int, error) {
	now := time.Now()
	seeded := 0
	for i := range count {
		name := fmt.Sprintf("internalUser%d", i)
		user := domain.NewUser(uuid.New(), name, "000", name+"@tourGuide.com")
		for _, age := range randomVisitAges(internalUserVisits) {
			user.AddVisit(domain.VisitedLocation{
				UserID:    user.ID,
				Location:  provider.RandomCoordinate(),
				VisitedAt: now.Add(-age),
			})
		}

		if err := s.users.Add(ctx, user); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				continue
			}
			return seeded, err
		}
		seeded++
	}

	s.logger.Info("internal test users seeded", zap.Int("count", seeded))
	return seeded, nil
}

// randomVisitAges returns n random ages within internalVisitMaxAge, oldest first,
// so visits appended in that order stay chronological.
func randomVisitAges(n int) []time.Duration {
	ages := make([]time.Duration, n)
	for i := range ages {
		ages[i] = time.Duration(rand.Int64N(int64(internalVisitMaxAge)))
	}
	slices.Sort(ages)
	slices.Reverse(ages)
	return ages
}
