package provider

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"tourguide/internal/domain"
)

// Web-mercator latitude limit used for generated positions.
const maxMercatorLatitude = 85.05112878

type catalogEntry struct {
	name, city, state string
	lat, lng          float64
}

var defaultCatalog = []catalogEntry{
	{"Disneyland", "Anaheim", "CA", 33.817595, -117.922008},
	{"Jackson Hole", "Jackson Hole", "WY", 43.582767, -110.821999},
	{"Mojave National Preserve", "Kelso", "CA", 35.141689, -115.510399},
	{"Joshua Tree National Park", "Joshua Tree National Park", "CA", 33.881866, -115.90065},
	{"Buffalo National River", "St Joe", "AR", 35.985512, -92.757652},
	{"Hot Springs National Park", "Hot Springs", "AR", 34.52153, -93.042267},
	{"Kartchner Caverns State Park", "Benson", "AZ", 31.837551, -110.347382},
	{"Legend Valley", "Thornville", "OH", 39.937778, -82.40667},
	{"Flowers Bakery of London", "Flowers Bakery of London", "KY", 37.131527, -84.07486},
	{"McKinley Tower", "Anchorage", "AK", 61.218887, -149.877502},
	{"Flatiron Building", "New York City", "NY", 40.741112, -73.989723},
	{"Fallingwater", "Mill Run", "PA", 39.906113, -79.468056},
	{"Union Station", "Washington D.C.", "DC", 38.897095, -77.006332},
	{"Roger Dean Stadium", "Jupiter", "FL", 26.890959, -80.116577},
	{"Texas Memorial Stadium", "Austin", "TX", 30.283682, -97.732536},
	{"Bryant-Denny Stadium", "Tuscaloosa", "AL", 33.208973, -87.550438},
	{"Tiger Stadium", "Baton Rouge", "LA", 30.412035, -91.183815},
	{"Neyland Stadium", "Knoxville", "TN", 35.955013, -83.925011},
	{"Kyle Field", "College Station", "TX", 30.61025, -96.339844},
	{"San Diego Zoo", "San Diego", "CA", 32.735317, -117.149048},
	{"Zoo Tampa at Lowry Park", "Tampa", "FL", 28.012804, -82.469269},
	{"Franklin Park Zoo", "Boston", "MA", 42.302601, -71.086731},
	{"El Paso Zoo", "El Paso", "TX", 31.769125, -106.44487},
	{"Kansas City Zoo", "Kansas City", "MO", 39.007504, -94.529625},
	{"Bronx Zoo", "Bronx", "NY", 40.852905, -73.872971},
	{"Cinderella Castle", "Orlando", "FL", 28.419411, -81.5812},
}

// DefaultAttractions returns the built-in attraction catalog.
// IDs are derived from the attraction name so they are stable across restarts.
func DefaultAttractions() []domain.Attraction {
	out := make([]domain.Attraction, 0, len(defaultCatalog))
	for _, e := range defaultCatalog {
		out = append(out, domain.Attraction{
			ID:       uuid.NewSHA1(uuid.NameSpaceURL, []byte("attraction:"+e.name)),
			Name:     e.name,
			City:     e.city,
			State:    e.state,
			Location: domain.MustCoordinate(e.lat, e.lng),
		})
	}
	return out
}

// SimulatedGPS is a LocationProvider that reports random positions.
type SimulatedGPS struct {
	attractions []domain.Attraction
	latency     Latency
}

// NewSimulatedGPS creates a SimulatedGPS over the default catalog.
func NewSimulatedGPS(latency Latency) *SimulatedGPS {
	return &SimulatedGPS{
		attractions: DefaultAttractions(),
		latency:     latency,
	}
}

// CurrentPosition returns a random position for the user, stamped now.
func (g *SimulatedGPS) CurrentPosition(ctx context.Context, userID uuid.UUID) (domain.VisitedLocation, error) {
	if err := g.latency.wait(ctx); err != nil {
		return domain.VisitedLocation{}, err
	}
	return domain.VisitedLocation{
		UserID:    userID,
		Location:  RandomCoordinate(),
		VisitedAt: time.Now(),
	}, nil
}

// Attractions returns a copy of the catalog.
func (g *SimulatedGPS) Attractions(ctx context.Context) ([]domain.Attraction, error) {
	if err := g.latency.wait(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Attraction, len(g.attractions))
	copy(out, g.attractions)
	return out, nil
}

// RandomCoordinate returns a uniformly random coordinate within mercator bounds.
func RandomCoordinate() domain.Coordinate {
	lat := -maxMercatorLatitude + rand.Float64()*(2*maxMercatorLatitude)
	lng := -180 + rand.Float64()*360
	return domain.Coordinate{Latitude: lat, Longitude: lng}
}
