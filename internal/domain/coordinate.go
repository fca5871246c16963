package domain

import "fmt"

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinate validates lat/lng and returns a Coordinate.
// Latitude must be within [-90, 90] and longitude within [-180, 180].
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	if !isValidLatitude(lat) || !isValidLongitude(lng) {
		return Coordinate{}, fmt.Errorf("%w: (%f, %f)", ErrInvalidCoordinate, lat, lng)
	}
	return Coordinate{Latitude: lat, Longitude: lng}, nil
}

// MustCoordinate is like NewCoordinate but panics on invalid input.
// Intended for static catalogs and tests.
func MustCoordinate(lat, lng float64) Coordinate {
	c, err := NewCoordinate(lat, lng)
	if err != nil {
		panic(err)
	}
	return c
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
