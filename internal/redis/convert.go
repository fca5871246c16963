package redis

import (
	"github.com/google/uuid"

	"tourguide/internal/domain"
)

func (c CachedAttraction) toDomain() (domain.Attraction, error) {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return domain.Attraction{}, err
	}
	return domain.Attraction{
		ID:       id,
		Name:     c.Name,
		City:     c.City,
		State:    c.State,
		Location: domain.Coordinate{Latitude: c.Latitude, Longitude: c.Longitude},
	}, nil
}
