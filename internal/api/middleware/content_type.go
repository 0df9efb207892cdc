package middleware

import (
	"mime"
	"net/http"

	"github.com/stationcal/stationcal/internal/api/models"
)

// ContentTypeJSON defaults the response Content-Type to application/json.
// Handlers that stream CSV or problem documents set their own first.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects POST, PUT and PATCH bodies declared as anything other
// than application/json. A missing Content-Type is accepted so that the
// bodiless session commands (weeks:next and friends) work from plain curl.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if declared := r.Header.Get("Content-Type"); declared != "" {
				mediaType, _, err := mime.ParseMediaType(declared)
				if err != nil || mediaType != "application/json" {
					problem := models.NewProblem(models.ProblemTypeUnsupportedMedia, "", http.StatusUnsupportedMediaType, GetRequestID(r.Context()))
					writeProblem(w, r, problem.WithDetail("Content-Type must be application/json, got "+declared))
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
