package domain

import (
	"time"

	"github.com/google/uuid"
)

// Attraction is a named point of interest.
type Attraction struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	City     string     `json:"city"`
	State    string     `json:"state"`
	Location Coordinate `json:"location"`
}

// VisitedLocation is a timestamped position recorded for a user.
type VisitedLocation struct {
	UserID    uuid.UUID  `json:"user_id"`
	Location  Coordinate `json:"location"`
	VisitedAt time.Time  `json:"visited_at"`
}
