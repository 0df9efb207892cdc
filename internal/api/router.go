// Package api provides the HTTP API for the station calendar.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/stationcal/stationcal/internal/api/handler"
	"github.com/stationcal/stationcal/internal/api/middleware"
	"github.com/stationcal/stationcal/internal/auth"
	"github.com/stationcal/stationcal/internal/booking"
	"github.com/stationcal/stationcal/internal/calendar"
	"github.com/stationcal/stationcal/internal/provider/resilience"
	"github.com/stationcal/stationcal/internal/station"
	"github.com/stationcal/stationcal/internal/store"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	RequireTLS  bool

	Clock    calendar.Clock
	Location *time.Location

	Tokens    *auth.TokenService
	Stations  *station.Service
	Bookings  *booking.Service
	Sessions  *store.Registry
	Providers *resilience.Registry

	// Sync runs a station sync on demand. Nil disables POST /v1/admin/sync.
	Sync handler.SyncRunner
	// SyncStatus reports sync counters on GET /v1/ops/status.
	SyncStatus handler.SyncStatus
	// Database is pinged by the readiness check. Nil when running on
	// in-memory repositories.
	Database handler.Pinger
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "stationcal-api"
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = auth.NewTokenService(auth.TokenConfig{})
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Providers: cfg.Providers,
		Database:  cfg.Database,
		Sync:      cfg.SyncStatus,
		Sessions:  cfg.Sessions,
	})
	calendarHandler := handler.NewCalendarHandler(cfg.Clock, cfg.Location)
	stationHandler := handler.NewStationHandler(cfg.Stations, cfg.Logger)
	bookingHandler := handler.NewBookingHandler(cfg.Bookings)
	sessionHandler := handler.NewSessionHandler(cfg.Sessions, cfg.Stations, cfg.Logger)
	adminHandler := handler.NewAdminHandler(cfg.Sync, cfg.Logger)

	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(middleware.OperatorAuth(tokens, auth.ScopeStatus)).Get("/status", opsHandler.SystemStatus)
		})

		r.Route("/calendar", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/grid", calendarHandler.Grid)
			r.Get("/weeks/current", calendarHandler.CurrentWeek)
			r.Get("/weeks/next", calendarHandler.NextWeek)
			r.Get("/weeks/prev", calendarHandler.PrevWeek)
		})

		r.Route("/stations", func(r chi.Router) {
			r.With(middleware.RateLimitByIP(middleware.SearchRateLimit)).Get("/", stationHandler.Search)
			r.Route("/{stationId}", func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Get("/", stationHandler.Get)
				r.Get("/days/{date}/bookings", stationHandler.DayBookings)
				r.Get("/bookings.csv", stationHandler.ExportCSV)
			})
		})

		r.With(standardRateLimit).Get("/bookings/{bookingId}", bookingHandler.Get)

		r.Route("/sessions", func(r chi.Router) {
			r.With(middleware.RateLimitByIP(middleware.SessionCreateRateLimit)).Post("/", sessionHandler.Create)
			r.Route("/{sessionId}", func(r chi.Router) {
				r.Use(middleware.RateLimitBySession(middleware.SessionCommandRateLimit))
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)
				r.Post("/weeks:next", sessionHandler.NextWeek)
				r.Post("/weeks:prev", sessionHandler.PrevWeek)
				r.Post("/weeks:current", sessionHandler.CurrentWeek)
				r.Put("/month", sessionHandler.ChangeMonth)
				r.Put("/station", sessionHandler.SelectStation)
				r.Get("/days/{date}/bookings", sessionHandler.DayBookings)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.OperatorAuth(tokens, auth.ScopeSync))
			r.Use(middleware.RateLimitByOperator(middleware.AdminRateLimit))
			r.Post("/sync", adminHandler.RunSync)
		})
	})

	return r
}
