package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NewRelic  NewRelicConfig
	Tracker   TrackerConfig
	Proximity ProximityConfig
	Providers ProvidersConfig
	App       AppConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration for the user profile store.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// TrackerConfig holds background location tracker configuration.
type TrackerConfig struct {
	Enabled  bool
	Interval time.Duration
	Workers  int
}

// ProximityConfig holds the proximity radii in statute miles.
type ProximityConfig struct {
	RewardRadiusMiles    float64
	DiscoveryRadiusMiles float64
}

// ProvidersConfig holds timeouts and simulated latency for external providers.
type ProvidersConfig struct {
	LocationTimeout    time.Duration
	ScoringTimeout     time.Duration
	PricingTimeout     time.Duration
	ScoringConcurrency int
	CatalogCacheTTL    time.Duration
	SimulatedLatency   time.Duration
}

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel            string
	InternalUserCount   int
	TripPricerAPIKey    string
	ClosestAttractionsK int
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolEnv("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "tourguide"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "tourguide-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Tracker: TrackerConfig{
			Enabled:  getBoolEnv("TRACKER_ENABLED", true),
			Interval: getDurationEnv("TRACKER_INTERVAL", 5*time.Minute),
			Workers:  getIntEnv("TRACKER_WORKERS", 64),
		},
		Proximity: ProximityConfig{
			RewardRadiusMiles:    getFloatEnv("REWARD_RADIUS_MILES", 10),
			DiscoveryRadiusMiles: getFloatEnv("DISCOVERY_RADIUS_MILES", 200),
		},
		Providers: ProvidersConfig{
			LocationTimeout:    getDurationEnv("LOCATION_TIMEOUT", 5*time.Second),
			ScoringTimeout:     getDurationEnv("SCORING_TIMEOUT", 5*time.Second),
			PricingTimeout:     getDurationEnv("PRICING_TIMEOUT", 5*time.Second),
			ScoringConcurrency: getIntEnv("SCORING_CONCURRENCY", 128),
			CatalogCacheTTL:    getDurationEnv("CATALOG_CACHE_TTL", 10*time.Minute),
			SimulatedLatency:   getDurationEnv("SIMULATED_LATENCY", 0),
		},
		App: AppConfig{
			LogLevel:            getEnv("LOG_LEVEL", "info"),
			InternalUserCount:   getIntEnv("INTERNAL_USER_COUNT", 100),
			TripPricerAPIKey:    getEnv("TRIP_PRICER_API_KEY", "test-server-api-key"),
			ClosestAttractionsK: getIntEnv("CLOSEST_ATTRACTIONS_K", 5),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
