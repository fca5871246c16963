package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tourguide/internal/domain"
	"tourguide/internal/repository"
	"tourguide/internal/service"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	tourGuide *service.TourGuideService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(tourGuide *service.TourGuideService) *UserHandler {
	return &UserHandler{tourGuide: tourGuide}
}

// RegisterRequest is the HTTP request body for user registration.
type RegisterRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Visits    int       `json:"visits"`
	Rewards   int       `json:"rewards"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Phone:     u.Phone,
		Email:     u.Email,
		Visits:    len(u.Visits()),
		Rewards:   u.Rewards().Len(),
		CreatedAt: u.CreatedAt,
	}
}

// Register handles POST /v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name is required"})
		return
	}

	user, err := h.tourGuide.AddUser(c.Request.Context(), req.Name, req.Phone, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			existing, getErr := h.tourGuide.GetUser(c.Request.Context(), req.Name)
			if getErr == nil {
				c.JSON(http.StatusConflict, gin.H{
					"message": "User already registered",
					"user":    toUserResponse(existing),
				})
				return
			}
		}
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toUserResponse(user))
}

// GetAll handles GET /v1/users
func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.tourGuide.AllUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, toUserResponse(u))
	}

	respondJSON(c, http.StatusOK, response)
}

// SetPreferences handles PUT /v1/users/:name/preferences
func (h *UserHandler) SetPreferences(c *gin.Context) {
	user, ok := loadUser(c, h.tourGuide)
	if !ok {
		return
	}

	prefs := user.Preferences()
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.tourGuide.SetPreferences(c.Request.Context(), user, prefs); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, user.Preferences())
}

// ClearVisits handles DELETE /v1/users/:name/visits
func (h *UserHandler) ClearVisits(c *gin.Context) {
	user, ok := loadUser(c, h.tourGuide)
	if !ok {
		return
	}

	if err := h.tourGuide.ClearVisits(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// loadUser resolves the :name path parameter, writing an error response on failure.
func loadUser(c *gin.Context, tourGuide *service.TourGuideService) (*domain.User, bool) {
	user, err := tourGuide.GetUser(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return user, true
}
