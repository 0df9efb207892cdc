// Package main provides the entrypoint for the station sync worker.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/stationcal/stationcal/internal/api/middleware"
	"github.com/stationcal/stationcal/internal/api/models"
	"github.com/stationcal/stationcal/internal/api/response"
	"github.com/stationcal/stationcal/internal/booking"
	"github.com/stationcal/stationcal/internal/config"
	"github.com/stationcal/stationcal/internal/database"
	"github.com/stationcal/stationcal/internal/provider/rentals"
	"github.com/stationcal/stationcal/internal/provider/resilience"
	"github.com/stationcal/stationcal/internal/station"
	"github.com/stationcal/stationcal/internal/telemetry"
	"github.com/stationcal/stationcal/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "stationcal-worker"

	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting station sync worker")

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if !database.Enabled() {
		log.Fatal().Msg("DB_HOST is required; the worker writes to PostgreSQL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.ConfigFromEnv(serviceName, Version, cfg.Environment))
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

	providerMetrics, err := resilience.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}

	pool, err := database.Connect(ctx, database.ConfigFromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
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

	syncJob := worker.NewSyncJob(worker.SyncJobConfig{
		Config: cfg.WorkerSyncConfig(),
		Source: rentals.NewClient(rentals.ClientConfig{
			BaseURL:    cfg.Rentals.BaseURL,
			APIKey:     cfg.Rentals.APIKey,
			HTTPClient: resilience.NewClient(rentalsHTTP),
			Logger:     log,
		}),
		Stations: station.NewPostgresRepository(pool),
		Bookings: booking.NewPostgresRepository(pool),
		Logger:   log.With().Str("component", "sync").Logger(),
	})

	scheduler, err := worker.NewScheduler(ctx, cfg.Sync.Schedule, syncJob, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create sync scheduler")
	}
	scheduler.Start()

	if cfg.Sync.OnStartup {
		go func() {
			if _, err := syncJob.Run(ctx); err != nil {
				log.Error().Err(err).Msg("startup station sync failed")
			}
		}()
	}

	var subscriber *worker.PubSubHandler
	if cfg.Sync.PubSubEnabled() {
		subscriber, err = worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.Sync.PubSubProject,
			SubscriptionName: cfg.Sync.PubSubSubscription,
			Job:              syncJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		go func() {
			if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	}

	// The worker exposes health endpoints for the container platform.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.ContentTypeJSON)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, models.Health{
			Status:  models.HealthStatusOK,
			Time:    models.Timestamp(time.Now()),
			Details: map[string]interface{}{"version": Version, "nextSync": scheduler.Next(time.Now())},
		})
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			response.ServiceUnavailable(w, r, "database unreachable")
			return
		}
		response.JSON(w, r, http.StatusOK, models.Health{Status: models.HealthStatusOK, Time: models.Timestamp(time.Now())})
	})
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, syncJob.MetricsSnapshot())
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if subscriber != nil {
		if err := subscriber.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close pubsub client")
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
