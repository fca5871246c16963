package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tourguide/internal/domain"
	"tourguide/internal/provider"
	"tourguide/internal/redis"
	"tourguide/internal/repository"
)

const defaultLocationTimeout = 5 * time.Second

// TourGuideConfig holds the settings for TourGuideService.
type TourGuideConfig struct {
	LocationTimeout  time.Duration
	PricingTimeout   time.Duration
	TripPricerAPIKey string
}

// TourGuideDeps contains the collaborators of TourGuideService.
// Profiles and LocationStore are optional.
type TourGuideDeps struct {
	Users         repository.UserRepository
	Profiles      repository.ProfileRepository
	Locations     provider.LocationProvider
	Pricing       provider.PricingProvider
	Rewards       *RewardEngine
	Finder        *AttractionFinder
	LocationStore redis.LocationStoreInterface
	Reporter      FailureReporter
	Logger        *zap.Logger
}

// TourGuideService handles user registration, location tracking and the
// read paths over a user's rewards and nearby attractions.
type TourGuideService struct {
	users         repository.UserRepository
	profiles      repository.ProfileRepository
	locations     provider.LocationProvider
	pricing       provider.PricingProvider
	rewards       *RewardEngine
	finder        *AttractionFinder
	locationStore redis.LocationStoreInterface
	reporter      FailureReporter
	logger        *zap.Logger
	cfg           TourGuideConfig
}

// NewTourGuideService creates a new TourGuideService.
func NewTourGuideService(deps TourGuideDeps, cfg TourGuideConfig) *TourGuideService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := deps.Reporter
	if reporter == nil {
		reporter = NewLogReporter(logger)
	}
	if cfg.LocationTimeout <= 0 {
		cfg.LocationTimeout = defaultLocationTimeout
	}
	if cfg.PricingTimeout <= 0 {
		cfg.PricingTimeout = defaultLocationTimeout
	}
	return &TourGuideService{
		users:         deps.Users,
		profiles:      deps.Profiles,
		locations:     deps.Locations,
		pricing:       deps.Pricing,
		rewards:       deps.Rewards,
		finder:        deps.Finder,
		locationStore: deps.LocationStore,
		reporter:      reporter,
		logger:        logger,
		cfg:           cfg,
	}
}

// AddUser registers a new user with default preferences.
func (s *TourGuideService) AddUser(ctx context.Context, name, phone, email string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidUserName
	}

	user := domain.NewUser(uuid.New(), name, phone, email)
	if err := s.users.Add(ctx, user); err != nil {
		return nil, err
	}
	s.saveProfile(ctx, user)

	s.logger.Info("user registered", zap.String("user", user.Name), zap.Stringer("user_id", user.ID))
	return user, nil
}

// GetUser retrieves a user by name.
func (s *TourGuideService) GetUser(ctx context.Context, name string) (*domain.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidUserName
	}
	return s.users.GetByName(ctx, name)
}

// AllUsers returns every registered user.
func (s *TourGuideService) AllUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.GetAll(ctx)
}

// GetUserLocation returns the user's last known location, tracking the user
// now if no location has been recorded yet.
func (s *TourGuideService) GetUserLocation(ctx context.Context, user *domain.User) (domain.VisitedLocation, error) {
	if visit, ok := user.LastVisit(); ok {
		return visit, nil
	}
	return s.TrackUserLocation(ctx, user)
}

// TrackUserLocation fetches the user's current position, appends it to the
// visit history and recalculates rewards.
// A reward calculation failure is reported and does not fail the call.
func (s *TourGuideService) TrackUserLocation(ctx context.Context, user *domain.User) (domain.VisitedLocation, error) {
	locCtx, cancel := context.WithTimeout(ctx, s.cfg.LocationTimeout)
	defer cancel()

	visit, err := s.locations.CurrentPosition(locCtx, user.ID)
	if err != nil {
		return domain.VisitedLocation{}, fmt.Errorf("%w: location: %w", ErrProviderUnavailable, err)
	}
	if _, err := domain.NewCoordinate(visit.Location.Latitude, visit.Location.Longitude); err != nil {
		return domain.VisitedLocation{}, fmt.Errorf("%w: location: %v", ErrProviderUnavailable, err)
	}
	user.AddVisit(visit)

	if s.locationStore != nil {
		if err := s.locationStore.UpdateLocation(ctx, user.ID.String(), visit.Location); err != nil {
			s.logger.Warn("failed to mirror user location", zap.Stringer("user_id", user.ID), zap.Error(err))
		}
	}

	if err := s.rewards.CalculateRewards(ctx, user); err != nil {
		s.reporter.ReportTrackingFailure(ctx, user, FailureRewards, err)
	}
	return visit, nil
}

// Rewards returns a snapshot of the user's rewards.
func (s *TourGuideService) Rewards(ctx context.Context, user *domain.User) []domain.Reward {
	return user.Rewards().Snapshot()
}

// TripDeals prices a trip with the user's accumulated points and preferences
// and stores the resulting offers on the user.
func (s *TourGuideService) TripDeals(ctx context.Context, user *domain.User) ([]domain.Offer, error) {
	prefs := user.Preferences()

	priceCtx, cancel := context.WithTimeout(ctx, s.cfg.PricingTimeout)
	defer cancel()

	offers, err := s.pricing.PriceTrip(priceCtx, provider.PriceTripRequest{
		APIKey:           s.cfg.TripPricerAPIKey,
		UserID:           user.ID,
		Adults:           prefs.NumberOfAdults,
		Children:         prefs.NumberOfChildren,
		DurationDays:     prefs.TripDuration,
		CumulativePoints: user.Rewards().TotalPoints(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: pricing: %w", ErrProviderUnavailable, err)
	}

	user.SetTripDeals(offers)
	return offers, nil
}

// NearbyAttractions returns the attractions within the discovery radius of
// the user's current location.
func (s *TourGuideService) NearbyAttractions(ctx context.Context, user *domain.User) ([]NearbyAttraction, error) {
	visit, err := s.GetUserLocation(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.finder.NearbyAttractions(ctx, visit.Location)
}

// ClosestAttractions returns the k attractions closest to the user's current
// location with their point values. k <= 0 uses the configured default.
func (s *TourGuideService) ClosestAttractions(ctx context.Context, user *domain.User, k int) ([]ClosestAttraction, error) {
	if k <= 0 {
		k = s.finder.DefaultK()
	}
	visit, err := s.GetUserLocation(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.finder.ClosestAttractions(ctx, user.ID, visit.Location, k)
}

// AllCurrentLocations returns the last known location of every user that has
// one, keyed by user ID.
func (s *TourGuideService) AllCurrentLocations(ctx context.Context) (map[string]domain.Coordinate, error) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	locations := make(map[string]domain.Coordinate, len(users))
	for _, u := range users {
		if visit, ok := u.LastVisit(); ok {
			locations[u.ID.String()] = visit.Location
		}
	}
	return locations, nil
}

// SharedLocations returns the positions mirrored to Redis by every replica.
// It falls back to AllCurrentLocations when no location store is configured.
func (s *TourGuideService) SharedLocations(ctx context.Context) (map[string]domain.Coordinate, error) {
	if s.locationStore == nil {
		return s.AllCurrentLocations(ctx)
	}

	stored, err := s.locationStore.AllLocations(ctx)
	if err != nil {
		return nil, err
	}
	locations := make(map[string]domain.Coordinate, len(stored))
	for _, l := range stored {
		locations[l.UserID] = domain.Coordinate{Latitude: l.Lat, Longitude: l.Lng}
	}
	return locations, nil
}

// SetPreferences validates and stores the user's trip preferences.
func (s *TourGuideService) SetPreferences(ctx context.Context, user *domain.User, prefs domain.Preferences) error {
	if err := validatePreferences(prefs); err != nil {
		return err
	}
	user.SetPreferences(prefs)
	s.saveProfile(ctx, user)
	return nil
}

// ClearVisits drops the user's visit history. Rewards are kept.
func (s *TourGuideService) ClearVisits(ctx context.Context, user *domain.User) error {
	user.ClearVisits()
	if s.locationStore != nil {
		if err := s.locationStore.RemoveLocation(ctx, user.ID.String()); err != nil {
			s.logger.Warn("failed to remove mirrored location", zap.Stringer("user_id", user.ID), zap.Error(err))
		}
	}
	return nil
}

// LoadProfiles registers every stored profile that is not registered yet.
// It returns the number of users loaded.
func (s *TourGuideService) LoadProfiles(ctx context.Context) (int, error) {
	if s.profiles == nil {
		return 0, nil
	}

	profiles, err := s.profiles.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load profiles: %w", err)
	}

	loaded := 0
	for _, p := range profiles {
		if err := s.users.Add(ctx, domain.UserFromProfile(p)); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				continue
			}
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

// saveProfile writes the user's profile through to the profile store.
// Persistence is best effort; the in-process registry stays authoritative.
func (s *TourGuideService) saveProfile(ctx context.Context, user *domain.User) {
	if s.profiles == nil {
		return
	}
	if err := s.profiles.Save(ctx, user.Profile()); err != nil {
		s.logger.Warn("failed to save user profile", zap.String("user", user.Name), zap.Error(err))
	}
}

func validatePreferences(p domain.Preferences) error {
	switch {
	case p.TripDuration < 1:
		return fmt.Errorf("%w: trip duration must be at least 1", ErrInvalidPreferences)
	case p.TicketQuantity < 1:
		return fmt.Errorf("%w: ticket quantity must be at least 1", ErrInvalidPreferences)
	case p.NumberOfAdults < 0 || p.NumberOfChildren < 0:
		return fmt.Errorf("%w: traveller counts must not be negative", ErrInvalidPreferences)
	case p.NumberOfAdults+p.NumberOfChildren == 0:
		return fmt.Errorf("%w: at least one traveller is required", ErrInvalidPreferences)
	case p.LowerPricePoint < 0 || p.HighPricePoint < p.LowerPricePoint:
		return fmt.Errorf("%w: price range", ErrInvalidPreferences)
	case p.AttractionProximity < 0:
		return fmt.Errorf("%w: attraction proximity must not be negative", ErrInvalidPreferences)
	}
	return nil
}
