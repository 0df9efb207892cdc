// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/stationcal/stationcal/internal/auth"
	"github.com/stationcal/stationcal/internal/store"
	"github.com/stationcal/stationcal/internal/worker"
)

// ErrInvalidConfig is wrapped by every validation error returned from FromEnv.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the configuration shared by the API server and the worker.
type Config struct {
	Port        string
	Environment string

	// RequireTLS rejects requests forwarded over plain HTTP.
	RequireTLS bool

	// Location is the calendar time zone. Every grid cell and booking bucket
	// is computed in it.
	Location *time.Location

	Rentals  RentalsConfig
	Sessions SessionsConfig
	Admin    auth.TokenConfig
	Sync     SyncConfig
}

// RentalsConfig points at the upstream rental backend.
type RentalsConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// SessionsConfig controls the in-memory calendar sessions.
type SessionsConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// SyncConfig controls the station sync job and how it is triggered.
type SyncConfig struct {
	Schedule           string
	Concurrency        int
	FetchBookingFeed   bool
	OnStartup          bool
	PubSubProject      string
	PubSubSubscription string
}

// PubSubEnabled reports whether a Pub/Sub subscription was configured.
func (c SyncConfig) PubSubEnabled() bool {
	return c.PubSubProject != "" && c.PubSubSubscription != ""
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// FromEnv reads the configuration from environment variables.
func FromEnv() (Config, error) {
	var errs []error

	loc, err := time.LoadLocation(getEnvOrDefault("CALENDAR_TZ", "UTC"))
	if err != nil {
		errs = append(errs, fmt.Errorf("CALENDAR_TZ: %w", err))
		loc = time.UTC
	}

	cfg := Config{
		Port:        getEnvOrDefault("APP_PORT", "8080"),
		Environment: getEnvOrDefault("APP_ENV", "development"),
		RequireTLS:  parseBool("REQUIRE_TLS", "false", &errs),
		Location:    loc,
		Rentals: RentalsConfig{
			BaseURL:    getEnvOrDefault("RENTALS_BASE_URL", "http://localhost:3000"),
			APIKey:     os.Getenv("RENTALS_API_KEY"),
			Timeout:    parseDuration("RENTALS_TIMEOUT", "10s", &errs),
			MaxRetries: parseInt("RENTALS_MAX_RETRIES", "3", &errs),
		},
		Sessions: SessionsConfig{
			TTL:           parseDuration("SESSION_TTL", store.DefaultSessionTTL.String(), &errs),
			SweepInterval: parseDuration("SESSION_SWEEP_INTERVAL", "1m", &errs),
		},
		Admin: auth.TokenConfig{
			SigningKey: os.Getenv("ADMIN_JWT_SIGNING_KEY"),
			Issuer:     getEnvOrDefault("ADMIN_JWT_ISSUER", "stationcal"),
			Audience:   getEnvOrDefault("ADMIN_JWT_AUDIENCE", "stationcal-admin"),
		},
		Sync: SyncConfig{
			Schedule:           getEnvOrDefault("SYNC_SCHEDULE", worker.DefaultSchedule),
			Concurrency:        parseInt("SYNC_CONCURRENCY", "4", &errs),
			FetchBookingFeed:   parseBool("SYNC_FETCH_BOOKING_FEED", "true", &errs),
			OnStartup:          parseBool("SYNC_ON_STARTUP", "true", &errs),
			PubSubProject:      os.Getenv("PUBSUB_PROJECT_ID"),
			PubSubSubscription: os.Getenv("PUBSUB_SUBSCRIPTION"),
		},
	}

	if cfg.Rentals.MaxRetries < 0 {
		errs = append(errs, errors.New("RENTALS_MAX_RETRIES: must not be negative"))
	}
	if cfg.Sessions.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL: must be positive"))
	}
	if cfg.Sessions.SweepInterval <= 0 {
		errs = append(errs, errors.New("SESSION_SWEEP_INTERVAL: must be positive"))
	}
	if cfg.Sync.Concurrency <= 0 {
		errs = append(errs, errors.New("SYNC_CONCURRENCY: must be positive"))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	return cfg, nil
}

// WorkerSyncConfig converts the sync settings into the job configuration.
func (c Config) WorkerSyncConfig() worker.SyncConfig {
	cfg := worker.DefaultSyncConfig()
	cfg.Concurrency = c.Sync.Concurrency
	cfg.FetchBookingFeed = c.Sync.FetchBookingFeed
	cfg.Location = c.Location
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(key, defaultValue string, errs *[]error) time.Duration {
	d, err := time.ParseDuration(getEnvOrDefault(key, defaultValue))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
	}
	return d
}

func parseInt(key, defaultValue string, errs *[]error) int {
	n, err := strconv.Atoi(getEnvOrDefault(key, defaultValue))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
	}
	return n
}

func parseBool(key, defaultValue string, errs *[]error) bool {
	b, err := strconv.ParseBool(getEnvOrDefault(key, defaultValue))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
	}
	return b
}
