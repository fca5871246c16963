package provider

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/google/uuid"

	"tourguide/internal/domain"
)

// ErrInvalidAPIKey is returned by the simulated pricer for an empty API key.
var ErrInvalidAPIKey = errors.New("invalid trip pricer api key")

var tripProviders = []string{
	"Holiday Travels",
	"Enterprize Ventures Limited",
	"Sunny Days",
	"FlyAway Trips",
	"United Partners Vacations",
	"Dream Trips",
	"Live Free",
	"Dancing Waves Cruselines and Partners",
	"AdventureCo",
	"Cure-Your-Blues",
}

const offersPerQuote = 5

// SimulatedTripPricer is a PricingProvider returning randomly priced offers.
type SimulatedTripPricer struct {
	latency Latency
}

// NewSimulatedTripPricer creates a SimulatedTripPricer.
func NewSimulatedTripPricer(latency Latency) *SimulatedTripPricer {
	return &SimulatedTripPricer{latency: latency}
}

// PriceTrip returns offers from distinct providers. Accumulated points lower the price.
func (p *SimulatedTripPricer) PriceTrip(ctx context.Context, req PriceTripRequest) ([]domain.Offer, error) {
	if req.APIKey == "" {
		return nil, ErrInvalidAPIKey
	}
	if err := p.latency.wait(ctx); err != nil {
		return nil, err
	}

	duration := max(req.DurationDays, 1)
	adults := max(req.Adults, 1)
	children := max(req.Children, 0)

	offers := make([]domain.Offer, 0, offersPerQuote)
	for _, i := range rand.Perm(len(tripProviders))[:offersPerQuote] {
		base := float64(rand.IntN(900) + 100)
		price := (base*float64(adults)+base*0.5*float64(children))*float64(duration) - float64(req.CumulativePoints)/3
		if price < 0 {
			price = 0
		}
		offers = append(offers, domain.Offer{
			ProviderID:   uuid.NewSHA1(uuid.NameSpaceURL, []byte("trip-provider:"+tripProviders[i])),
			ProviderName: tripProviders[i],
			Price:        price,
		})
	}
	return offers, nil
}
