package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tourguide/internal/app"
	"tourguide/internal/config"
	"tourguide/internal/geo"
	"tourguide/internal/handler"
	"tourguide/internal/logger"
	"tourguide/internal/middleware"
	"tourguide/internal/provider"
	internalRedis "tourguide/internal/redis"
	"tourguide/internal/repository"
	"tourguide/internal/repository/memory"
	"tourguide/internal/repository/postgres"
	"tourguide/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	zlog, err := logger.New(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			zlog.Warn("failed to initialize New Relic", zap.Error(err))
			nrApp = nil
		} else {
			zlog.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	var db *sql.DB
	if cfg.Database.Enabled {
		db, err = app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			zlog.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		zlog.Info("connected to PostgreSQL")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		zlog.Info("connected to Redis")
	}

	// Wire dependencies.
	deps := wire(db, redisClient, nrApp, cfg, zlog)

	loaded, err := deps.tourGuide.LoadProfiles(ctx)
	if err != nil {
		zlog.Fatal("failed to load user profiles", zap.Error(err))
	}
	if loaded > 0 {
		zlog.Info("user profiles loaded", zap.Int("count", loaded))
	}
	if _, err := deps.tourGuide.SeedInternalUsers(ctx, cfg.App.InternalUserCount); err != nil {
		zlog.Fatal("failed to seed internal users", zap.Error(err))
	}

	if cfg.Tracker.Enabled {
		if err := deps.tracker.Start(context.Background()); err != nil {
			zlog.Fatal("failed to start tracker", zap.Error(err))
		}
	}

	// Start server in goroutine.
	go func() {
		zlog.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := deps.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := deps.server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}

	deps.tracker.Stop()

	drained := make(chan struct{})
	go func() {
		deps.rewards.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		zlog.Warn("scoring still in flight at shutdown")
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	zlog.Info("server exited")
}

// components holds the wired long-lived parts of the process.
type components struct {
	server    *http.Server
	tourGuide *service.TourGuideService
	rewards   *service.RewardEngine
	tracker   *service.Tracker
}

// wire wires all dependencies. db and redisClient may be nil.
func wire(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, zlog *zap.Logger) *components {
	// Optional stores. Interfaces stay nil when a backend is disabled.
	var (
		profileRepo   repository.ProfileRepository
		cacheStore    internalRedis.CacheStoreInterface
		locationStore internalRedis.LocationStoreInterface
		lockStore     internalRedis.LockStoreInterface
		responseCache middleware.ResponseCache
	)
	if db != nil {
		profileRepo = postgres.NewProfileRepository(db)
	}
	if redisClient != nil {
		cacheStore = internalRedis.NewCacheStore(redisClient, cfg.Providers.CatalogCacheTTL)
		locationStore = internalRedis.NewLocationStore(redisClient)
		lockStore = internalRedis.NewLockStore(redisClient)
		responseCache = middleware.NewRedisResponseCache(redisClient)
	}

	// Simulated providers.
	latency := provider.Latency{Min: cfg.Providers.SimulatedLatency / 2, Max: cfg.Providers.SimulatedLatency}
	gps := provider.NewSimulatedGPS(latency)
	rewardCentral := provider.NewSimulatedRewardCentral(latency)
	tripPricer := provider.NewSimulatedTripPricer(latency)

	// Initialize services.
	reporter := service.NewNewRelicReporter(nrApp, service.NewLogReporter(zlog))
	policy := geo.NewProximityPolicy(cfg.Proximity.RewardRadiusMiles, cfg.Proximity.DiscoveryRadiusMiles)
	catalog := service.NewCatalogService(gps, cacheStore, cfg.Providers.CatalogCacheTTL, cfg.Providers.LocationTimeout, zlog)
	rewards := service.NewRewardEngine(catalog, rewardCentral, policy, reporter, service.RewardEngineConfig{
		ScoringTimeout:     cfg.Providers.ScoringTimeout,
		ScoringConcurrency: cfg.Providers.ScoringConcurrency,
	}, zlog)
	finder := service.NewAttractionFinder(catalog, rewardCentral, policy, service.AttractionFinderConfig{
		DefaultK:       cfg.App.ClosestAttractionsK,
		ScoringTimeout: cfg.Providers.ScoringTimeout,
	})

	userRepo := memory.NewUserRepository()
	tourGuide := service.NewTourGuideService(service.TourGuideDeps{
		Users:         userRepo,
		Profiles:      profileRepo,
		Locations:     gps,
		Pricing:       tripPricer,
		Rewards:       rewards,
		Finder:        finder,
		LocationStore: locationStore,
		Reporter:      reporter,
		Logger:        zlog,
	}, service.TourGuideConfig{
		LocationTimeout:  cfg.Providers.LocationTimeout,
		PricingTimeout:   cfg.Providers.PricingTimeout,
		TripPricerAPIKey: cfg.App.TripPricerAPIKey,
	})
	tracker := service.NewTracker(userRepo, tourGuide, lockStore, reporter, service.TrackerConfig{
		Interval: cfg.Tracker.Interval,
		Workers:  cfg.Tracker.Workers,
	}, zlog.Named("tracker"))

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		UserHandler:       handler.NewUserHandler(tourGuide),
		LocationHandler:   handler.NewLocationHandler(tourGuide),
		RewardHandler:     handler.NewRewardHandler(tourGuide),
		AttractionHandler: handler.NewAttractionHandler(tourGuide),
		ResponseCache:     responseCache,
		NewRelicApp:       nrApp,
		Logger:            zlog.Named("http"),
	})

	return &components{
		server: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		tourGuide: tourGuide,
		rewards:   rewards,
		tracker:   tracker,
	}
}
