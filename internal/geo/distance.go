// Package geo implements the great-circle distance model and proximity thresholds.
package geo

import (
	"math"

	"github.com/golang/geo/s1"

	"tourguide/internal/domain"
)

// StatuteMilesPerNauticalMile converts nautical miles to statute miles.
const StatuteMilesPerNauticalMile = 1.15077945

// nauticalMilesPerDegree is one minute of arc per nautical mile.
const nauticalMilesPerDegree = 60

// Distance returns the great-circle distance between a and b in statute miles,
// using the spherical law of cosines.
func Distance(a, b domain.Coordinate) float64 {
	lat1 := (s1.Angle(a.Latitude) * s1.Degree).Radians()
	lon1 := (s1.Angle(a.Longitude) * s1.Degree).Radians()
	lat2 := (s1.Angle(b.Latitude) * s1.Degree).Radians()
	lon2 := (s1.Angle(b.Longitude) * s1.Degree).Radians()

	cosAngle := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(lon1-lon2)
	// Rounding can push cosAngle slightly outside [-1, 1] and make acos return NaN.
	cosAngle = math.Max(-1, math.Min(1, cosAngle))

	angle := s1.Angle(math.Acos(cosAngle)) * s1.Radian
	nauticalMiles := nauticalMilesPerDegree * angle.Degrees()
	return StatuteMilesPerNauticalMile * nauticalMiles
}
