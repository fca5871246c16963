package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tourguide/internal/service"
)

// AttractionHandler handles HTTP requests for attractions near a user.
type AttractionHandler struct {
	tourGuide *service.TourGuideService
}

// NewAttractionHandler creates a new AttractionHandler.
func NewAttractionHandler(tourGuide *service.TourGuideService) *AttractionHandler {
	return &AttractionHandler{tourGuide: tourGuide}
}

// GetNearby handles GET /v1/users/:name/attractions/nearby
func (h *AttractionHandler) GetNearby(c *gin.Context) {
	user, ok := loadUser(c, h.tourGuide)
	if !ok {
		return
	}

	nearby, err := h.tourGuide.NearbyAttractions(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, nearby)
}

// GetClosest handles GET /v1/users/:name/attractions/closest?k=5
func (h *AttractionHandler) GetClosest(c *gin.Context) {
	k := 0
	if raw := c.Query("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, service.ErrInvalidK)
			return
		}
		k = parsed
	}

	user, ok := loadUser(c, h.tourGuide)
	if !ok {
		return
	}

	closest, err := h.tourGuide.ClosestAttractions(c.Request.Context(), user, k)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, closest)
}
