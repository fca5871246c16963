package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"tourguide/internal/domain"
	"tourguide/internal/repository"
	"tourguide/internal/repository/memory"
	"tourguide/internal/service"
)

type tourGuideFixture struct {
	users         *memory.UserRepository
	profiles      *MockProfileRepository
	locations     *MockLocationProvider
	scoring       *MockScoringProvider
	pricing       *MockPricingProvider
	locationStore *MockLocationStore
	rewards       *service.RewardEngine
	svc           *service.TourGuideService
}

func newTourGuideFixture(attractions []domain.Attraction, position domain.Coordinate) *tourGuideFixture {
	f := &tourGuideFixture{
		users:         memory.NewUserRepository(),
		profiles:      NewMockProfileRepository(),
		locations:     NewMockLocationProvider(attractions, position),
		scoring:       NewMockScoringProvider(100),
		pricing:       &MockPricingProvider{Offers: []domain.Offer{{ProviderID: uuid.New(), ProviderName: "Sunny Days", Price: 250}}},
		locationStore: NewMockLocationStore(),
	}
	reporter := NewRecordingReporter()
	f.rewards = newRewardEngine(f.locations, f.scoring, reporter, time.Second)
	f.svc = service.NewTourGuideService(service.TourGuideDeps{
		Users:         f.users,
		Profiles:      f.profiles,
		Locations:     f.locations,
		Pricing:       f.pricing,
		Rewards:       f.rewards,
		Finder:        service.NewAttractionFinder(f.locations, f.scoring, nil, service.AttractionFinderConfig{DefaultK: 5}),
		LocationStore: f.locationStore,
		Reporter:      reporter,
	}, service.TourGuideConfig{
		LocationTimeout:  time.Second,
		PricingTimeout:   time.Second,
		TripPricerAPIKey: "test-server-api-key",
	})
	return f
}

func TestAddUser(t *testing.T) {
	ctx := context.Background()
	f := newTourGuideFixture(nil, domain.Coordinate{})

	user, err := f.svc.AddUser(ctx, "jon", "000", "jon@tourGuide.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := f.svc.GetUser(ctx, "jon")
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if got != user {
		t.Error("expected the registered user instance")
	}
	if _, ok := f.profiles.Get(user.ID); !ok {
		t.Error("expected profile to be written through")
	}

	if _, err := f.svc.AddUser(ctx, "jon", "111", ""); !errors.Is(err, repository.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := f.svc.AddUser(ctx, "  ", "", ""); !errors.Is(err, service.ErrInvalidUserName) {
		t.Errorf("expected ErrInvalidUserName, got %v", err)
	}
	if _, err := f.svc.GetUser(ctx, "nobody"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetUserLocation_TracksOnlyWhenNoVisit(t *testing.T) {
	ctx := context.Background()
	position := domain.Coordinate{Latitude: 12.5, Longitude: 77.5}
	f := newTourGuideFixture(nil, position)

	user, _ := f.svc.AddUser(ctx, "jon", "000", "")

	first, err := f.svc.GetUserLocation(ctx, user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Location != position {
		t.Errorf("expected %v, got %v", position, first.Location)
	}

	f.locations.SetPosition(domain.Coordinate{Latitude: 1, Longitude: 1})
	second, err := f.svc.GetUserLocation(ctx, user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Location != position {
		t.Errorf("expected last known location, got %v", second.Location)
	}
	if f.locations.PositionCallCount != 1 {
		t.Errorf("expected 1 location call, got %d", f.locations.PositionCallCount)
	}
	if !f.locationStore.Has(user.ID.String()) {
		t.Error("expected location to be mirrored")
	}
}

func TestTrackUserLocation_AppendsAndRewards(t *testing.T) {
	ctx := context.Background()
	attraction := newAttraction("Disneyland", 33.817595, -117.922008)
	f := newTourGuideFixture([]domain.Attraction{attraction}, attraction.Location)

	user, _ := f.svc.AddUser(ctx, "jon", "000", "")
	for range 3 {
		if _, err := f.svc.TrackUserLocation(ctx, user); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	f.rewards.Wait()

	if len(user.Visits()) != 3 {
		t.Errorf("expected 3 visits, got %d", len(user.Visits()))
	}
	rewards := f.svc.Rewards(ctx, user)
	if len(rewards) != 1 {
		t.Fatalf("expected 1 reward, got %d", len(rewards))
	}
	if rewards[0].Points != 100 {
		t.Errorf("expected 100 points, got %d", rewards[0].Points)
	}
}

func TestTrackUserLocation_ProviderFailure(t *testing.T) {
	ctx := context.Background()
	f := newTourGuideFixture(nil, domain.Coordinate{})
	user, _ := f.svc.AddUser(ctx, "jon", "000", "")
	f.locations.FailFor(user.ID)

	_, err := f.svc.TrackUserLocation(ctx, user)
	if !errors.Is(err, service.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
	if len(user.Visits()) != 0 {
		t.Error("expected no visit to be recorded")
	}
}

func TestTripDeals_UsesAccumulatedPointsAndPreferences(t *testing.T) {
	ctx := context.Background()
	attractions := clusteredAttractions(3, 40, -100)
	f := newTourGuideFixture(attractions, attractions[0].Location)

	user, _ := f.svc.AddUser(ctx, "jon", "000", "")
	if _, err := f.svc.TrackUserLocation(ctx, user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.rewards.Wait()

	prefs := domain.DefaultPreferences()
	prefs.NumberOfAdults = 2
	prefs.NumberOfChildren = 3
	prefs.TripDuration = 7
	if err := f.svc.SetPreferences(ctx, user, prefs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	offers, err := f.svc.TripDeals(ctx, user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(offers))
	}

	req := f.pricing.LastRequest()
	if req.CumulativePoints != 300 {
		t.Errorf("expected 300 cumulative points, got %d", req.CumulativePoints)
	}
	if req.Adults != 2 || req.Children != 3 || req.DurationDays != 7 {
		t.Errorf("preferences not passed through: %+v", req)
	}
	if req.APIKey != "test-server-api-key" || req.UserID != user.ID {
		t.Errorf("unexpected identity in request: %+v", req)
	}
	if len(user.TripDeals()) != 1 {
		t.Error("expected offers to be stored on the user")
	}
}

func TestSetPreferences_Validation(t *testing.T) {
	ctx := context.Background()
	f := newTourGuideFixture(nil, domain.Coordinate{})
	user, _ := f.svc.AddUser(ctx, "jon", "000", "")

	prefs := domain.DefaultPreferences()
	prefs.TripDuration = 0
	if err := f.svc.SetPreferences(ctx, user, prefs); !errors.Is(err, service.ErrInvalidPreferences) {
		t.Errorf("expected ErrInvalidPreferences, got %v", err)
	}
	if user.Preferences().TripDuration != 1 {
		t.Error("invalid preferences must not be stored")
	}
}

func TestClearVisits_KeepsRewards(t *testing.T) {
	ctx := context.Background()
	attraction := newAttraction("Disneyland", 33.817595, -117.922008)
	f := newTourGuideFixture([]domain.Attraction{attraction}, attraction.Location)

	user, _ := f.svc.AddUser(ctx, "jon", "000", "")
	_, _ = f.svc.TrackUserLocation(ctx, user)
	f.rewards.Wait()

	if err := f.svc.ClearVisits(ctx, user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(user.Visits()) != 0 {
		t.Error("expected visits to be cleared")
	}
	if user.Rewards().Len() != 1 {
		t.Error("expected rewards to survive clearing visits")
	}
	if f.locationStore.Has(user.ID.String()) {
		t.Error("expected mirrored location to be removed")
	}
}

func TestAllCurrentLocations(t *testing.T) {
	ctx := context.Background()
	position := domain.Coordinate{Latitude: 5, Longitude: 5}
	f := newTourGuideFixture(nil, position)

	tracked, _ := f.svc.AddUser(ctx, "tracked", "000", "")
	_, _ = f.svc.AddUser(ctx, "idle", "000", "")
	_, _ = f.svc.TrackUserLocation(ctx, tracked)

	locations, err := f.svc.AllCurrentLocations(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locations) != 1 {
		t.Fatalf("expected 1 location, got %d", len(locations))
	}
	if locations[tracked.ID.String()] != position {
		t.Errorf("expected %v, got %v", position, locations[tracked.ID.String()])
	}

	shared, err := f.svc.SharedLocations(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shared) != 1 {
		t.Errorf("expected 1 shared location, got %d", len(shared))
	}
}

func TestClosestAttractions_UsesConfiguredDefaultK(t *testing.T) {
	ctx := context.Background()
	f := newTourGuideFixture(clusteredAttractions(8, 0, 0), domain.Coordinate{})
	user, _ := f.svc.AddUser(ctx, "jon", "000", "")

	results, err := f.svc.ClosestAttractions(ctx, user, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("expected 5 results, got %d", len(results))
	}
	f.rewards.Wait()
}

func TestSeedInternalUsers(t *testing.T) {
	ctx := context.Background()
	f := newTourGuideFixture(nil, domain.Coordinate{})

	seeded, err := f.svc.SeedInternalUsers(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seeded != 10 {
		t.Errorf("expected 10 seeded users, got %d", seeded)
	}

	user, err := f.svc.GetUser(ctx, "internalUser3")
	if err != nil {
		t.Fatalf("expected internalUser3: %v", err)
	}
	if user.Email != "internalUser3@tourGuide.com" || user.Phone != "000" {
		t.Errorf("unexpected contact info: %s %s", user.Phone, user.Email)
	}

	visits := user.Visits()
	if len(visits) != 3 {
		t.Fatalf("expected 3 visits, got %d", len(visits))
	}
	cutoff := time.Now().Add(-31 * 24 * time.Hour)
	for _, v := range visits {
		if v.VisitedAt.Before(cutoff) || v.VisitedAt.After(time.Now()) {
			t.Errorf("visit time out of range: %v", v.VisitedAt)
		}
		if _, err := domain.NewCoordinate(v.Location.Latitude, v.Location.Longitude); err != nil {
			t.Errorf("invalid generated coordinate: %v", err)
		}
	}

	// Seeding again skips existing names.
	again, err := f.svc.SeedInternalUsers(ctx, 10)
	if err != nil || again != 0 {
		t.Errorf("expected 0 newly seeded users, got %d (%v)", again, err)
	}
}

func TestSeedInternalUsers_VisitHistoryIsChronological(t *testing.T) {
	ctx := context.Background()
	f := newTourGuideFixture(nil, domain.Coordinate{})

	if _, err := f.svc.SeedInternalUsers(ctx, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	users, err := f.svc.AllUsers(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, user := range users {
		visits := user.Visits()
		for i := 1; i < len(visits); i++ {
			if visits[i].VisitedAt.Before(visits[i-1].VisitedAt) {
				t.Errorf("%s: visit %d at %v precedes visit %d at %v",
					user.Name, i, visits[i].VisitedAt, i-1, visits[i-1].VisitedAt)
			}
		}
		last, ok := user.LastVisit()
		if !ok {
			t.Fatalf("%s: expected a last visit", user.Name)
		}
		for _, v := range visits {
			if v.VisitedAt.After(last.VisitedAt) {
				t.Errorf("%s: last visit %v is not the latest (%v)", user.Name, last.VisitedAt, v.VisitedAt)
			}
		}
	}
}

func TestLoadProfiles(t *testing.T) {
	ctx := context.Background()
	f := newTourGuideFixture(nil, domain.Coordinate{})

	prefs := domain.DefaultPreferences()
	prefs.NumberOfChildren = 2
	stored := domain.UserProfile{ID: uuid.New(), Name: "stored", Phone: "123", Email: "s@x.com", Preferences: prefs, CreatedAt: time.Now()}
	f.profiles = NewMockProfileRepository(stored)
	f.svc = service.NewTourGuideService(service.TourGuideDeps{
		Users:    f.users,
		Profiles: f.profiles,
		Rewards:  f.rewards,
	}, service.TourGuideConfig{})

	loaded, err := f.svc.LoadProfiles(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded != 1 {
		t.Fatalf("expected 1 loaded profile, got %d", loaded)
	}

	user, err := f.svc.GetUser(ctx, "stored")
	if err != nil {
		t.Fatalf("expected stored user: %v", err)
	}
	if user.ID != stored.ID || user.Preferences().NumberOfChildren != 2 {
		t.Errorf("profile not restored: %+v", user.Profile())
	}
}
