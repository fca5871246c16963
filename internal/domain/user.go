package domain

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Preferences holds a user's trip preferences.
type Preferences struct {
	AttractionProximity int     `json:"attraction_proximity"`
	Currency            string  `json:"currency"`
	LowerPricePoint     float64 `json:"lower_price_point"`
	HighPricePoint      float64 `json:"high_price_point"`
	TripDuration        int     `json:"trip_duration"`
	TicketQuantity      int     `json:"ticket_quantity"`
	NumberOfAdults      int     `json:"number_of_adults"`
	NumberOfChildren    int     `json:"number_of_children"`
}

// DefaultPreferences returns the preferences assigned at registration.
func DefaultPreferences() Preferences {
	return Preferences{
		AttractionProximity: math.MaxInt32,
		Currency:            "USD",
		LowerPricePoint:     0,
		HighPricePoint:      math.MaxInt32,
		TripDuration:        1,
		TicketQuantity:      1,
		NumberOfAdults:      1,
		NumberOfChildren:    0,
	}
}

// Offer is a priced trip deal from a provider.
type Offer struct {
	ProviderID   uuid.UUID `json:"provider_id"`
	ProviderName string    `json:"provider_name"`
	Price        float64   `json:"price"`
}

// User represents a traveller tracked by the system.
type User struct {
	ID        uuid.UUID
	Name      string
	Phone     string
	Email     string
	CreatedAt time.Time

	mu          sync.RWMutex
	visits      []VisitedLocation
	preferences Preferences
	tripDeals   []Offer
	rewards     *RewardLedger
}

// NewUser creates a user with default preferences and an empty ledger.
func NewUser(id uuid.UUID, name, phone, email string) *User {
	return &User{
		ID:          id,
		Name:        name,
		Phone:       phone,
		Email:       email,
		CreatedAt:   time.Now(),
		preferences: DefaultPreferences(),
		rewards:     NewRewardLedger(),
	}
}

// AddVisit appends a visit to the user's history.
func (u *User) AddVisit(visit VisitedLocation) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.visits = append(u.visits, visit)
}

// Visits returns a copy of the visit history in insertion order.
func (u *User) Visits() []VisitedLocation {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]VisitedLocation, len(u.visits))
	copy(out, u.visits)
	return out
}

// LastVisit returns the most recent visit, if any.
func (u *User) LastVisit() (VisitedLocation, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if len(u.visits) == 0 {
		return VisitedLocation{}, false
	}
	return u.visits[len(u.visits)-1], true
}

// ClearVisits drops the visit history. Rewards are kept.
func (u *User) ClearVisits() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.visits = nil
}

// Rewards returns the user's ledger.
func (u *User) Rewards() *RewardLedger {
	return u.rewards
}

// Preferences returns the user's trip preferences.
func (u *User) Preferences() Preferences {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.preferences
}

// SetPreferences replaces the user's trip preferences.
func (u *User) SetPreferences(p Preferences) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.preferences = p
}

// TripDeals returns the offers from the last pricing call.
func (u *User) TripDeals() []Offer {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]Offer, len(u.tripDeals))
	copy(out, u.tripDeals)
	return out
}

// SetTripDeals stores the offers from a pricing call.
func (u *User) SetTripDeals(offers []Offer) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tripDeals = offers
}

// UserProfile is the persistable part of a user: identity and preferences.
type UserProfile struct {
	ID          uuid.UUID
	Name        string
	Phone       string
	Email       string
	Preferences Preferences
	CreatedAt   time.Time
}

// Profile returns the user's persistable profile.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:          u.ID,
		Name:        u.Name,
		Phone:       u.Phone,
		Email:       u.Email,
		Preferences: u.Preferences(),
		CreatedAt:   u.CreatedAt,
	}
}

// UserFromProfile rebuilds a user from a stored profile with empty history and ledger.
func UserFromProfile(p UserProfile) *User {
	u := NewUser(p.ID, p.Name, p.Phone, p.Email)
	u.CreatedAt = p.CreatedAt
	u.preferences = p.Preferences
	return u
}
