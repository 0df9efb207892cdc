package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/stationcal/stationcal/internal/api/models"
)

// RateLimitConfig is a sliding-window budget of RequestLimit requests per
// WindowLength.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

var (
	// SearchRateLimit applies to station autocomplete, which clients call
	// while the user types (120 req/min).
	SearchRateLimit = RateLimitConfig{
		RequestLimit: 120,
		WindowLength: time.Minute,
	}

	// SessionCreateRateLimit applies to session creation (20 req/min).
	SessionCreateRateLimit = RateLimitConfig{
		RequestLimit: 20,
		WindowLength: time.Minute,
	}

	// AdminRateLimit applies to operator endpoints (10 req/min).
	AdminRateLimit = RateLimitConfig{
		RequestLimit: 10,
		WindowLength: time.Minute,
	}

	// SessionCommandRateLimit applies per session to week and month
	// navigation, station selection and session reads (60 req/min).
	SessionCommandRateLimit = RateLimitConfig{
		RequestLimit: 60,
		WindowLength: time.Minute,
	}

	// StandardRateLimit applies to everything else (100 req/min).
	StandardRateLimit = RateLimitConfig{
		RequestLimit: 100,
		WindowLength: time.Minute,
	}
)

// RateLimitByIP limits requests per client IP.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(limitExceededHandler(cfg)),
	)
}

// RateLimitByOperator limits requests per authenticated operator, falling
// back to the client IP. It must run after OperatorAuth to see the operator.
func RateLimitByOperator(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyByOperatorOrIP),
		httprate.WithLimitHandler(limitExceededHandler(cfg)),
	)
}

// RateLimitBySession limits requests per {sessionId} path value so one busy
// browser tab cannot exhaust the budget of others behind the same NAT.
// Requests without a session fall back to the client IP.
func RateLimitBySession(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyBySessionOrIP),
		httprate.WithLimitHandler(limitExceededHandler(cfg)),
	)
}

func keyBySessionOrIP(r *http.Request) (string, error) {
	if id := chi.URLParam(r, "sessionId"); id != "" {
		return "session:" + id, nil
	}
	return httprate.KeyByRealIP(r)
}

func keyByOperatorOrIP(r *http.Request) (string, error) {
	if operator := GetOperator(r.Context()); operator != "" {
		return "operator:" + operator, nil
	}
	return httprate.KeyByRealIP(r)
}

// limitExceededHandler writes a 429 problem. httprate does not expose the
// window reset, so Retry-After is the full window.
func limitExceededHandler(cfg RateLimitConfig) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(cfg.WindowLength.Seconds()))

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", retryAfter)
		writeProblem(w, r, models.NewTooManyRequests(GetRequestID(r.Context()), "Rate limit exceeded. Please try again later."))
	}
}
