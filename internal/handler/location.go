package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tourguide/internal/domain"
	"tourguide/internal/service"
)

// LocationHandler handles HTTP requests for user locations.
type LocationHandler struct {
	tourGuide *service.TourGuideService
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(tourGuide *service.TourGuideService) *LocationHandler {
	return &LocationHandler{tourGuide: tourGuide}
}

// VisitedLocationResponse is the HTTP response for a recorded visit.
type VisitedLocationResponse struct {
	UserID    string    `json:"user_id"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	VisitedAt time.Time `json:"visited_at"`
}

func toVisitedLocationResponse(v domain.VisitedLocation) VisitedLocationResponse {
	return VisitedLocationResponse{
		UserID:    v.UserID.String(),
		Lat:       v.Location.Latitude,
		Lng:       v.Location.Longitude,
		VisitedAt: v.VisitedAt,
	}
}

// GetLocation handles GET /v1/users/:name/location
func (h *LocationHandler) GetLocation(c *gin.Context) {
	user, ok := loadUser(c, h.tourGuide)
	if !ok {
		return
	}

	visit, err := h.tourGuide.GetUserLocation(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toVisitedLocationResponse(visit))
}

// Track handles POST /v1/users/:name/track
func (h *LocationHandler) Track(c *gin.Context) {
	user, ok := loadUser(c, h.tourGuide)
	if !ok {
		return
	}

	visit, err := h.tourGuide.TrackUserLocation(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toVisitedLocationResponse(visit))
}

// GetAll handles GET /v1/locations
// With ?scope=shared the positions mirrored by every replica are returned.
func (h *LocationHandler) GetAll(c *gin.Context) {
	var (
		locations map[string]domain.Coordinate
		err       error
	)
	if c.Query("scope") == "shared" {
		locations, err = h.tourGuide.SharedLocations(c.Request.Context())
	} else {
		locations, err = h.tourGuide.AllCurrentLocations(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, locations)
}
