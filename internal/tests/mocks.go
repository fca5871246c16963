package tests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"tourguide/internal/domain"
	"tourguide/internal/provider"
	"tourguide/internal/redis"
	"tourguide/internal/repository"
	"tourguide/internal/service"
)

var errProviderDown = errors.New("provider down")

// ──────────────────────────────────────────────
// FIXTURES
// ──────────────────────────────────────────────

// newAttraction builds an attraction with a fresh id.
func newAttraction(name string, lat, lng float64) domain.Attraction {
	return domain.Attraction{
		ID:       uuid.New(),
		Name:     name,
		Location: domain.MustCoordinate(lat, lng),
	}
}

// clusteredAttractions builds n attractions within a mile of (lat, lng).
func clusteredAttractions(n int, lat, lng float64) []domain.Attraction {
	out := make([]domain.Attraction, 0, n)
	for i := range n {
		out = append(out, newAttraction(fmt.Sprintf("attraction-%d", i), lat+float64(i)*0.001, lng))
	}
	return out
}

// newUserWithVisits builds a user with one visit per coordinate.
func newUserWithVisits(name string, coords ...domain.Coordinate) *domain.User {
	user := domain.NewUser(uuid.New(), name, "000", name+"@tourGuide.com")
	for _, c := range coords {
		user.AddVisit(domain.VisitedLocation{UserID: user.ID, Location: c, VisitedAt: time.Now()})
	}
	return user
}

// ──────────────────────────────────────────────
// MOCK LOCATION PROVIDER
// ──────────────────────────────────────────────

// MockLocationProvider is a mock implementation of provider.LocationProvider.
type MockLocationProvider struct {
	mu          sync.RWMutex
	attractions []domain.Attraction
	position    domain.Coordinate
	failFor     map[uuid.UUID]bool

	// Counters for verification
	PositionCallCount    int32
	AttractionsCallCount int32

	// Error injection
	AttractionsError error
	PositionDelay    time.Duration
}

// NewMockLocationProvider creates a provider reporting every user at position.
func NewMockLocationProvider(attractions []domain.Attraction, position domain.Coordinate) *MockLocationProvider {
	return &MockLocationProvider{
		attractions: attractions,
		position:    position,
		failFor:     make(map[uuid.UUID]bool),
	}
}

// FailFor makes CurrentPosition fail for the given user.
func (m *MockLocationProvider) FailFor(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFor[userID] = true
}

// SetPosition changes the position reported for every user.
func (m *MockLocationProvider) SetPosition(c domain.Coordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = c
}

func (m *MockLocationProvider) CurrentPosition(ctx context.Context, userID uuid.UUID) (domain.VisitedLocation, error) {
	atomic.AddInt32(&m.PositionCallCount, 1)
	if m.PositionDelay > 0 {
		select {
		case <-ctx.Done():
			return domain.VisitedLocation{}, ctx.Err()
		case <-time.After(m.PositionDelay):
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failFor[userID] {
		return domain.VisitedLocation{}, errProviderDown
	}
	return domain.VisitedLocation{UserID: userID, Location: m.position, VisitedAt: time.Now()}, nil
}

func (m *MockLocationProvider) Attractions(ctx context.Context) ([]domain.Attraction, error) {
	atomic.AddInt32(&m.AttractionsCallCount, 1)
	if m.AttractionsError != nil {
		return nil, m.AttractionsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Attraction, len(m.attractions))
	copy(out, m.attractions)
	return out, nil
}

// ──────────────────────────────────────────────
// MOCK SCORING PROVIDER
// ──────────────────────────────────────────────

// MockScoringProvider is a mock implementation of provider.ScoringProvider.
type MockScoringProvider struct {
	mu     sync.Mutex
	points int
	err    error
	calls  map[uuid.UUID]int

	// Counters for verification
	CallCount int32

	Delay time.Duration
}

// NewMockScoringProvider creates a scorer returning a fixed point value.
func NewMockScoringProvider(points int) *MockScoringProvider {
	return &MockScoringProvider{
		points: points,
		calls:  make(map[uuid.UUID]int),
	}
}

// SetError makes subsequent calls fail with err. A nil err restores success.
func (m *MockScoringProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// CallsFor returns how many times the attraction was scored.
func (m *MockScoringProvider) CallsFor(attractionID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[attractionID]
}

func (m *MockScoringProvider) PointsFor(ctx context.Context, attractionID, userID uuid.UUID) (int, error) {
	atomic.AddInt32(&m.CallCount, 1)
	m.mu.Lock()
	m.calls[attractionID]++
	points, err := m.points, m.err
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	if err != nil {
		return 0, err
	}
	return points, nil
}

// ──────────────────────────────────────────────
// MOCK PRICING PROVIDER
// ──────────────────────────────────────────────

// MockPricingProvider is a mock implementation of provider.PricingProvider.
type MockPricingProvider struct {
	mu          sync.Mutex
	lastRequest provider.PriceTripRequest

	Offers []domain.Offer
	Error  error
}

func (m *MockPricingProvider) PriceTrip(ctx context.Context, req provider.PriceTripRequest) ([]domain.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRequest = req
	if m.Error != nil {
		return nil, m.Error
	}
	return m.Offers, nil
}

// LastRequest returns the most recent pricing request.
func (m *MockPricingProvider) LastRequest() provider.PriceTripRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// ──────────────────────────────────────────────
// RECORDING REPORTER
// ──────────────────────────────────────────────

// RecordingReporter counts reported failures.
type RecordingReporter struct {
	ScoringFailures  int32
	TrackingFailures int32

	mu     sync.Mutex
	failed map[uuid.UUID]service.FailureType
}

// NewRecordingReporter creates a RecordingReporter.
func NewRecordingReporter() *RecordingReporter {
	return &RecordingReporter{failed: make(map[uuid.UUID]service.FailureType)}
}

func (r *RecordingReporter) ReportScoringFailure(ctx context.Context, user *domain.User, attraction domain.Attraction, err error) {
	atomic.AddInt32(&r.ScoringFailures, 1)
}

func (r *RecordingReporter) ReportTrackingFailure(ctx context.Context, user *domain.User, kind service.FailureType, err error) {
	atomic.AddInt32(&r.TrackingFailures, 1)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[user.ID] = kind
}

// FailureFor returns the failure kind recorded for the user, if any.
func (r *RecordingReporter) FailureFor(userID uuid.UUID) (service.FailureType, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kind, ok := r.failed[userID]
	return kind, ok
}

// ──────────────────────────────────────────────
// MOCK REDIS STORES
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu   sync.Mutex
	held bool

	AcquireCallCount int32
	ReleaseCallCount int32

	// HeldElsewhere simulates another replica owning the tick.
	HeldElsewhere bool
}

func NewMockLockStore() *MockLockStore {
	return &MockLockStore{}
}

func (m *MockLockStore) AcquireTrackerLock(ctx context.Context, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.HeldElsewhere {
		return false, nil
	}
	m.held = true
	return true, nil
}

func (m *MockLockStore) ReleaseTrackerLock(ctx context.Context) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = false
	return nil
}

// MockLocationStore is a mock implementation of LocationStoreInterface.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations map[string]domain.Coordinate
}

func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{locations: make(map[string]domain.Coordinate)}
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, userID string, loc domain.Coordinate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[userID] = loc
	return nil
}

func (m *MockLocationStore) AllLocations(ctx context.Context) ([]redis.UserLocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]redis.UserLocation, 0, len(m.locations))
	for id, c := range m.locations {
		out = append(out, redis.UserLocation{UserID: id, Lat: c.Latitude, Lng: c.Longitude})
	}
	return out, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locations, userID)
	return nil
}

// Has reports whether a location is stored for the user.
func (m *MockLocationStore) Has(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.locations[userID]
	return ok
}

// MockCacheStore is a mock implementation of CacheStoreInterface.
type MockCacheStore struct {
	mu          sync.Mutex
	attractions []domain.Attraction

	GetCallCount int32
	SetCallCount int32
}

func (m *MockCacheStore) GetAttractions(ctx context.Context) ([]domain.Attraction, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attractions, nil
}

func (m *MockCacheStore) SetAttractions(ctx context.Context, attractions []domain.Attraction) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attractions = attractions
	return nil
}

// ──────────────────────────────────────────────
// MOCK PROFILE REPOSITORY
// ──────────────────────────────────────────────

// MockProfileRepository is a mock implementation of ProfileRepository.
type MockProfileRepository struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]domain.UserProfile

	SaveCallCount int32
	SaveError     error
}

func NewMockProfileRepository(profiles ...domain.UserProfile) *MockProfileRepository {
	m := &MockProfileRepository{profiles: make(map[uuid.UUID]domain.UserProfile)}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *MockProfileRepository) Save(ctx context.Context, profile domain.UserProfile) error {
	atomic.AddInt32(&m.SaveCallCount, 1)
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.ID] = profile
	return nil
}

func (m *MockProfileRepository) GetAll(ctx context.Context) ([]domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.UserProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	return out, nil
}

// Get returns the stored profile for assertions.
func (m *MockProfileRepository) Get(id uuid.UUID) (domain.UserProfile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	return p, ok
}

// Ensure mocks implement interfaces.
var (
	_ provider.LocationProvider    = (*MockLocationProvider)(nil)
	_ provider.ScoringProvider     = (*MockScoringProvider)(nil)
	_ provider.PricingProvider     = (*MockPricingProvider)(nil)
	_ service.FailureReporter      = (*RecordingReporter)(nil)
	_ redis.LockStoreInterface     = (*MockLockStore)(nil)
	_ redis.LocationStoreInterface = (*MockLocationStore)(nil)
	_ redis.CacheStoreInterface    = (*MockCacheStore)(nil)
	_ repository.ProfileRepository = (*MockProfileRepository)(nil)
)
