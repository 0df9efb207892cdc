package middleware_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stationcal/stationcal/internal/api/middleware"
)

func TestSecurityHeaders(t *testing.T) {
	handler := middleware.SecurityHeaders(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/stations", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	assert.Equal(t, "geolocation=(), camera=(), microphone=()", rec.Header().Get("Permissions-Policy"))
	assert.Empty(t, rec.Header().Get("Cache-Control"))
}

func TestSecurityHeaders_NoStoreForSessionState(t *testing.T) {
	for _, path := range []string{"/v1/sessions/ses_123", "/v1/admin/sync"} {
		rec := httptest.NewRecorder()
		middleware.SecurityHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))

		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"), path)
	}
}

func TestSecurityHeaders_PreservesHandlerHeaders(t *testing.T) {
	handler := middleware.SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="st_1-bookings.csv"`)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stations/st_1/bookings.csv", http.NoBody))

	assert.Equal(t, `attachment; filename="st_1-bookings.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRequireTLS(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		path     string
		proto    string
		tls      bool
		wantCode int
	}{
		{"disabled allows http", false, "/v1/stations", "http", false, http.StatusOK},
		{"rejects forwarded http", true, "/v1/stations", "http", false, http.StatusForbidden},
		{"allows forwarded https", true, "/v1/stations", "https", false, http.StatusOK},
		{"scheme is case-insensitive", true, "/v1/stations", "HTTPS", false, http.StatusOK},
		{"allows direct connection", true, "/v1/stations", "", false, http.StatusOK},
		{"allows terminated tls", true, "/v1/stations", "http", true, http.StatusOK},
		{"health probes pass", true, "/v1/ops/health", "http", false, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.RequireTLS(tt.enabled)(okHandler())

			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusForbidden {
				assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
				assert.Contains(t, rec.Body.String(), "This endpoint requires HTTPS")
			}
		})
	}
}
