package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"go.uber.org/zap"

	"tourguide/internal/handler"
	"tourguide/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
// ResponseCache and NewRelicApp are optional.
type RouterDeps struct {
	UserHandler       *handler.UserHandler
	LocationHandler   *handler.LocationHandler
	RewardHandler     *handler.RewardHandler
	AttractionHandler *handler.AttractionHandler
	ResponseCache     middleware.ResponseCache
	NewRelicApp       *newrelic.Application
	Logger            *zap.Logger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.ResponseCache, logger))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("", deps.UserHandler.GetAll)

			user := users.Group("/:name")
			{
				user.GET("/location", deps.LocationHandler.GetLocation)
				user.POST("/track", deps.LocationHandler.Track)
				user.DELETE("/visits", deps.UserHandler.ClearVisits)
				user.PUT("/preferences", deps.UserHandler.SetPreferences)

				user.GET("/rewards", deps.RewardHandler.GetRewards)
				user.GET("/trip-deals", deps.RewardHandler.GetTripDeals)

				user.GET("/attractions/nearby", deps.AttractionHandler.GetNearby)
				user.GET("/attractions/closest", deps.AttractionHandler.GetClosest)
			}
		}

		v1.GET("/locations", deps.LocationHandler.GetAll)
	}

	return router
}
