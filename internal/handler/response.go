package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tourguide/internal/domain"
	"tourguide/internal/repository"
	"tourguide/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidUserName),
		errors.Is(err, service.ErrInvalidK),
		errors.Is(err, service.ErrInvalidPreferences),
		errors.Is(err, domain.ErrInvalidCoordinate):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, repository.ErrAlreadyExists),
		errors.Is(err, service.ErrTrackerAlreadyStarted):
		return http.StatusConflict

	// Service unavailable
	case errors.Is(err, service.ErrProviderUnavailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
