package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tourguide/internal/domain"
	"tourguide/internal/geo"
	"tourguide/internal/service"
)

func newRewardEngine(locations *MockLocationProvider, scoring *MockScoringProvider, reporter service.FailureReporter, timeout time.Duration) *service.RewardEngine {
	return service.NewRewardEngine(locations, scoring, geo.DefaultProximityPolicy(), reporter, service.RewardEngineConfig{
		ScoringTimeout:     timeout,
		ScoringConcurrency: 16,
	}, nil)
}

func TestCalculateRewards_OneRewardPerAttractionAcrossVisits(t *testing.T) {
	ctx := context.Background()

	attractions := clusteredAttractions(4, 33.817595, -117.922008)
	locations := NewMockLocationProvider(attractions, domain.Coordinate{})
	scoring := NewMockScoringProvider(100)
	engine := newRewardEngine(locations, scoring, NewRecordingReporter(), time.Second)

	// Every visit is within the reward radius of every attraction.
	visit := attractions[0].Location
	user := newUserWithVisits("jon", visit, visit, visit, visit, visit, visit)

	if err := engine.CalculateRewards(ctx, user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	engine.Wait()

	if got := user.Rewards().Len(); got != len(attractions) {
		t.Errorf("expected %d rewards, got %d", len(attractions), got)
	}
	if scoring.CallCount != int32(len(attractions)) {
		t.Errorf("expected %d scoring calls, got %d", len(attractions), scoring.CallCount)
	}
}

func TestCalculateRewards_ConcurrentInvocationsNeverDuplicate(t *testing.T) {
	ctx := context.Background()

	attractions := clusteredAttractions(10, 40.0, -100.0)
	locations := NewMockLocationProvider(attractions, domain.Coordinate{})
	scoring := NewMockScoringProvider(42)
	scoring.Delay = 5 * time.Millisecond
	engine := newRewardEngine(locations, scoring, NewRecordingReporter(), time.Second)

	c := attractions[0].Location
	user := newUserWithVisits("jon", c, c, c, c, c)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := engine.CalculateRewards(ctx, user); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	engine.Wait()

	rewards := user.Rewards().Snapshot()
	if len(rewards) != 10 {
		t.Fatalf("expected 10 rewards, got %d", len(rewards))
	}

	seen := make(map[string]bool)
	for _, r := range rewards {
		if seen[r.Attraction.ID.String()] {
			t.Errorf("duplicate reward for %s", r.Attraction.Name)
		}
		seen[r.Attraction.ID.String()] = true
		if r.State != domain.RewardStateScored || r.Points != 42 {
			t.Errorf("expected scored reward with 42 points, got %s/%d", r.State, r.Points)
		}
	}

	if scoring.CallCount != 10 {
		t.Errorf("expected exactly 10 scoring calls, got %d", scoring.CallCount)
	}
	for _, a := range attractions {
		if n := scoring.CallsFor(a.ID); n != 1 {
			t.Errorf("expected 1 scoring call for %s, got %d", a.Name, n)
		}
	}
}

func TestCalculateRewards_UserAtAttraction(t *testing.T) {
	ctx := context.Background()

	attraction := newAttraction("Null Island", 0, 0)
	locations := NewMockLocationProvider([]domain.Attraction{attraction}, domain.Coordinate{})
	scoring := NewMockScoringProvider(7)
	engine := newRewardEngine(locations, scoring, NewRecordingReporter(), time.Second)

	user := newUserWithVisits("jon", domain.Coordinate{Latitude: 0, Longitude: 0})

	if d := geo.Distance(user.Visits()[0].Location, attraction.Location); d != 0 {
		t.Fatalf("expected distance 0, got %f", d)
	}

	if err := engine.CalculateRewards(ctx, user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	engine.Wait()

	rewards := user.Rewards().Snapshot()
	if len(rewards) != 1 {
		t.Fatalf("expected 1 reward, got %d", len(rewards))
	}
	if rewards[0].Points != 7 {
		t.Errorf("expected 7 points, got %d", rewards[0].Points)
	}
}

func TestCalculateRewards_OutsideRadiusGrantsNothing(t *testing.T) {
	ctx := context.Background()

	attraction := newAttraction("Disneyland", 33.817595, -117.922008)
	locations := NewMockLocationProvider([]domain.Attraction{attraction}, domain.Coordinate{})
	scoring := NewMockScoringProvider(7)
	engine := newRewardEngine(locations, scoring, NewRecordingReporter(), time.Second)

	// Roughly 20 miles north.
	user := newUserWithVisits("jon", domain.Coordinate{Latitude: 34.1, Longitude: -117.922008})

	if err := engine.CalculateRewards(ctx, user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	engine.Wait()

	if user.Rewards().Len() != 0 {
		t.Errorf("expected no rewards, got %d", user.Rewards().Len())
	}
	if scoring.CallCount != 0 {
		t.Errorf("expected no scoring calls, got %d", scoring.CallCount)
	}
}

func TestCalculateRewards_ScoringFailureLeavesRewardPending(t *testing.T) {
	ctx := context.Background()

	attractions := clusteredAttractions(3, 10, 10)
	locations := NewMockLocationProvider(attractions, domain.Coordinate{})
	scoring := NewMockScoringProvider(100)
	scoring.SetError(errProviderDown)
	reporter := NewRecordingReporter()
	engine := newRewardEngine(locations, scoring, reporter, time.Second)

	user := newUserWithVisits("jon", attractions[0].Location)

	if err := engine.CalculateRewards(ctx, user); err != nil {
		t.Fatalf("scoring failures must not be returned: %v", err)
	}
	engine.Wait()

	rewards := user.Rewards().Snapshot()
	if len(rewards) != 3 {
		t.Fatalf("expected 3 rewards, got %d", len(rewards))
	}
	for _, r := range rewards {
		if r.State != domain.RewardStatePending {
			t.Errorf("expected PENDING, got %s", r.State)
		}
		if r.Points != 0 {
			t.Errorf("expected 0 points, got %d", r.Points)
		}
	}
	if reporter.ScoringFailures != 3 {
		t.Errorf("expected 3 reported scoring failures, got %d", reporter.ScoringFailures)
	}
}

func TestCalculateRewards_ScoringTimeoutIsAFailure(t *testing.T) {
	ctx := context.Background()

	attractions := clusteredAttractions(2, 10, 10)
	locations := NewMockLocationProvider(attractions, domain.Coordinate{})
	scoring := NewMockScoringProvider(100)
	scoring.Delay = time.Second
	reporter := NewRecordingReporter()
	engine := newRewardEngine(locations, scoring, reporter, 20*time.Millisecond)

	user := newUserWithVisits("jon", attractions[0].Location)

	start := time.Now()
	if err := engine.CalculateRewards(ctx, user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	engine.Wait()

	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("scoring was not bounded by the timeout: %v", elapsed)
	}
	for _, r := range user.Rewards().Snapshot() {
		if r.State != domain.RewardStatePending {
			t.Errorf("expected PENDING after timeout, got %s", r.State)
		}
	}
	if reporter.ScoringFailures != 2 {
		t.Errorf("expected 2 reported scoring failures, got %d", reporter.ScoringFailures)
	}
}

func TestCalculateRewards_RetriesPendingOnNextCall(t *testing.T) {
	ctx := context.Background()

	attractions := clusteredAttractions(2, 10, 10)
	locations := NewMockLocationProvider(attractions, domain.Coordinate{})
	scoring := NewMockScoringProvider(55)
	scoring.SetError(errProviderDown)
	engine := newRewardEngine(locations, scoring, NewRecordingReporter(), time.Second)

	user := newUserWithVisits("jon", attractions[0].Location)

	_ = engine.CalculateRewards(ctx, user)
	engine.Wait()

	scoring.SetError(nil)
	_ = engine.CalculateRewards(ctx, user)
	engine.Wait()

	rewards := user.Rewards().Snapshot()
	if len(rewards) != 2 {
		t.Fatalf("expected 2 rewards, got %d", len(rewards))
	}
	for _, r := range rewards {
		if r.State != domain.RewardStateScored || r.Points != 55 {
			t.Errorf("expected retried reward scored with 55 points, got %s/%d", r.State, r.Points)
		}
	}
	if user.Rewards().TotalPoints() != 110 {
		t.Errorf("expected 110 total points, got %d", user.Rewards().TotalPoints())
	}
}

func TestCalculateRewards_CatalogFailure(t *testing.T) {
	ctx := context.Background()

	locations := NewMockLocationProvider(nil, domain.Coordinate{})
	locations.AttractionsError = errProviderDown
	catalog := service.NewCatalogService(locations, nil, time.Minute, time.Second, nil)
	engine := service.NewRewardEngine(catalog, NewMockScoringProvider(1), nil, nil, service.RewardEngineConfig{}, nil)

	user := newUserWithVisits("jon", domain.Coordinate{})

	err := engine.CalculateRewards(ctx, user)
	if !errors.Is(err, service.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if !errors.Is(err, errProviderDown) {
		t.Errorf("expected the provider error to be wrapped, got %v", err)
	}
}

func TestCalculateRewards_PolicyChangeAppliesToNextCall(t *testing.T) {
	ctx := context.Background()

	attraction := newAttraction("Disneyland", 33.817595, -117.922008)
	locations := NewMockLocationProvider([]domain.Attraction{attraction}, domain.Coordinate{})
	engine := newRewardEngine(locations, NewMockScoringProvider(1), NewRecordingReporter(), time.Second)

	user := newUserWithVisits("jon", domain.Coordinate{Latitude: 34.1, Longitude: -117.922008})

	engine.Policy().SetRewardRadius(50)
	defer engine.Policy().Reset()

	if err := engine.CalculateRewards(ctx, user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	engine.Wait()

	if user.Rewards().Len() != 1 {
		t.Errorf("expected 1 reward with widened radius, got %d", user.Rewards().Len())
	}
}
