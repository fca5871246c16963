package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tourguide/internal/domain"
	"tourguide/internal/service"
)

// RewardHandler handles HTTP requests for rewards and trip deals.
type RewardHandler struct {
	tourGuide *service.TourGuideService
}

// NewRewardHandler creates a new RewardHandler.
func NewRewardHandler(tourGuide *service.TourGuideService) *RewardHandler {
	return &RewardHandler{tourGuide: tourGuide}
}

// RewardResponse is the HTTP response for a single reward.
type RewardResponse struct {
	AttractionID   string    `json:"attraction_id"`
	AttractionName string    `json:"attraction_name"`
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	VisitedAt      time.Time `json:"visited_at"`
	Points         int       `json:"points"`
	State          string    `json:"state"`
}

// RewardsResponse is the HTTP response for a user's rewards.
type RewardsResponse struct {
	User        string           `json:"user"`
	TotalPoints int              `json:"total_points"`
	Rewards     []RewardResponse `json:"rewards"`
}

// GetRewards handles GET /v1/users/:name/rewards
func (h *RewardHandler) GetRewards(c *gin.Context) {
	user, ok := loadUser(c, h.tourGuide)
	if !ok {
		return
	}

	rewards := h.tourGuide.Rewards(c.Request.Context(), user)
	response := RewardsResponse{
		User:    user.Name,
		Rewards: make([]RewardResponse, 0, len(rewards)),
	}
	for _, r := range rewards {
		response.TotalPoints += r.Points
		response.Rewards = append(response.Rewards, toRewardResponse(r))
	}

	respondJSON(c, http.StatusOK, response)
}

func toRewardResponse(r domain.Reward) RewardResponse {
	return RewardResponse{
		AttractionID:   r.Attraction.ID.String(),
		AttractionName: r.Attraction.Name,
		Lat:            r.VisitedLocation.Location.Latitude,
		Lng:            r.VisitedLocation.Location.Longitude,
		VisitedAt:      r.VisitedLocation.VisitedAt,
		Points:         r.Points,
		State:          string(r.State),
	}
}

// GetTripDeals handles GET /v1/users/:name/trip-deals
func (h *RewardHandler) GetTripDeals(c *gin.Context) {
	user, ok := loadUser(c, h.tourGuide)
	if !ok {
		return
	}

	offers, err := h.tourGuide.TripDeals(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, offers)
}
