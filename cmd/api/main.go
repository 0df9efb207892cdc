// Package main provides the entrypoint for the station calendar API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/stationcal/stationcal/internal/api"
	"github.com/stationcal/stationcal/internal/api/handler"
	"github.com/stationcal/stationcal/internal/api/middleware"
	"github.com/stationcal/stationcal/internal/auth"
	"github.com/stationcal/stationcal/internal/booking"
	"github.com/stationcal/stationcal/internal/calendar"
	"github.com/stationcal/stationcal/internal/config"
	"github.com/stationcal/stationcal/internal/database"
	"github.com/stationcal/stationcal/internal/provider/rentals"
	"github.com/stationcal/stationcal/internal/provider/resilience"
	"github.com/stationcal/stationcal/internal/station"
	"github.com/stationcal/stationcal/internal/store"
	"github.com/stationcal/stationcal/internal/telemetry"
	"github.com/stationcal/stationcal/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "stationcal-api"

	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting station calendar API")

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryCfg := telemetry.ConfigFromEnv(serviceName, Version, cfg.Environment)
	tp, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()
	if telemetryCfg.Enabled {
		log.Info().
			Str("otlp_endpoint", telemetryCfg.OTLPEndpoint).
			Float64("sample_ratio", telemetryCfg.SampleRatio).
			Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize HTTP metrics")
	}
	providerMetrics, err := resilience.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}

	// Storage: PostgreSQL when DB_HOST is set, in-memory otherwise.
	var (
		stationRepo station.Repository
		bookingRepo booking.Repository
		pool        *pgxpool.Pool
	)
	if database.Enabled() {
		dbConfig := database.ConfigFromEnv()
		pool, err = database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")

		stationRepo = station.NewPostgresRepository(pool)
		bookingRepo = booking.NewPostgresRepository(pool)
	} else {
		log.Warn().Msg("DB_HOST not set - using in-memory storage")
		stationRepo = station.NewInMemoryRepository()
		bookingRepo = booking.NewInMemoryRepository()
	}

	providers := resilience.NewRegistry()
	if err := providerMetrics.ObserveRegistry(providers); err != nil {
		log.Fatal().Err(err).Msg("failed to register circuit state gauge")
	}
	rentalsHTTP := resilience.DefaultClientConfig(rentals.ProviderName)
	rentalsHTTP.Timeout = cfg.Rentals.Timeout
	rentalsHTTP.MaxRetries = uint64(cfg.Rentals.MaxRetries) //nolint:gosec // validated non-negative
	rentalsHTTP.Registry = providers
	rentalsHTTP.Metrics = providerMetrics

	rentalsClient := rentals.NewClient(rentals.ClientConfig{
		BaseURL:    cfg.Rentals.BaseURL,
		APIKey:     cfg.Rentals.APIKey,
		HTTPClient: resilience.NewClient(rentalsHTTP),
		Logger:     log,
	})

	syncJob := worker.NewSyncJob(worker.SyncJobConfig{
		Config:   cfg.WorkerSyncConfig(),
		Source:   rentalsClient,
		Stations: stationRepo,
		Bookings: bookingRepo,
		Logger:   log.With().Str("component", "sync").Logger(),
	})

	if cfg.Sync.OnStartup {
		go func() {
			if _, err := syncJob.Run(ctx); err != nil {
				log.Error().Err(err).Msg("startup station sync failed")
			}
		}()
	}

	// In-memory storage is private to this process, so the schedule runs here
	// instead of in the worker.
	if pool == nil {
		scheduler, err := worker.NewScheduler(ctx, cfg.Sync.Schedule, syncJob, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create sync scheduler")
		}
		scheduler.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			scheduler.Stop(stopCtx)
		}()
	}

	clock := calendar.SystemClock
	sessions := store.NewRegistry(store.RegistryConfig{
		TTL:      cfg.Sessions.TTL,
		Clock:    clock,
		Location: cfg.Location,
		Logger:   log.With().Str("component", "sessions").Logger(),
	})
	go sessions.Run(ctx, cfg.Sessions.SweepInterval)

	tokens := auth.NewTokenService(cfg.Admin)
	if !tokens.Enabled() {
		log.Warn().Msg("ADMIN_JWT_SIGNING_KEY not set - operator endpoints disabled")
	}

	var ready handler.Pinger
	if pool != nil {
		ready = pool
	}

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     httpMetrics,
		RequireTLS:  cfg.RequireTLS,
		Clock:       clock,
		Location:    cfg.Location,
		Tokens:      tokens,
		Stations:    station.NewService(stationRepo, bookingRepo, cfg.Location),
		Bookings:    booking.NewService(bookingRepo),
		Sessions:    sessions,
		Providers:   providers,
		Sync:        syncJob,
		SyncStatus:  syncJob,
		Database:    ready,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		// POST /v1/admin/sync holds the response for a whole run.
		WriteTimeout: cfg.WorkerSyncConfig().Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("location", cfg.Location.String()).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}
