package middleware

import (
	"net/http"
	"strings"

	"github.com/stationcal/stationcal/internal/api/models"
)

// securityHeaders are set on every response. The API serves JSON and CSV
// only, so no content may be framed or executed.
var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "geolocation=(), camera=(), microphone=()"},
}

// SecurityHeaders adds the security headers above to all HTTP responses.
// Session and admin responses are also marked uncacheable since they carry
// per-client state.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		if strings.HasPrefix(r.URL.Path, "/v1/sessions") || strings.HasPrefix(r.URL.Path, "/v1/admin") {
			h.Set("Cache-Control", "no-store")
		}

		next.ServeHTTP(w, r)
	})
}

// RequireTLS rejects plain-HTTP requests when enabled. The scheme comes from
// X-Forwarded-Proto, set by the load balancer; requests without it are direct
// connections and pass. Health probes under /v1/ops/ always pass.
func RequireTLS(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			proto := r.Header.Get("X-Forwarded-Proto")
			if r.TLS == nil && proto != "" && !strings.EqualFold(proto, "https") && !strings.HasPrefix(r.URL.Path, "/v1/ops/") {
				problem := models.NewProblem(models.ProblemTypeTLSRequired, "TLS required", http.StatusForbidden, GetRequestID(r.Context()))
				writeProblem(w, r, problem.WithDetail("This endpoint requires HTTPS"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
