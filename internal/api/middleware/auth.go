package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/stationcal/stationcal/internal/api/models"
	"github.com/stationcal/stationcal/internal/auth"
)

// claimsKey is the context key for validated operator claims.
type claimsKey struct{}

// OperatorAuth validates operator bearer tokens and stores their claims in
// the request context. When scopes are given, every one of them must be
// granted by the token.
func OperatorAuth(tokens *auth.TokenService, scopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokens.Enabled() {
				writeProblem(w, r, models.NewServiceUnavailable(GetRequestID(r.Context()), "operator authentication is not configured"))
				return
			}

			tokenString, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, r, "missing or malformed bearer token")
				return
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrAccessTokenExpired):
					writeUnauthorized(w, r, "access token has expired")
				case errors.Is(err, auth.ErrInvalidAccessToken):
					writeUnauthorized(w, r, "invalid access token")
				default:
					writeUnauthorized(w, r, "authentication failed")
				}
				return
			}

			for _, scope := range scopes {
				if !claims.HasScope(scope) {
					writeProblem(w, r, models.NewForbidden(GetRequestID(r.Context()), "token lacks scope "+scope))
					return
				}
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const bearerPrefix = "Bearer "

	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// writeUnauthorized writes a 401 problem. The response package imports this
// one, so problems are written directly here.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="stationcal"`)
	writeProblem(w, r, models.NewUnauthorized(GetRequestID(r.Context()), detail))
}

func writeProblem(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// GetClaims returns the operator claims of an authenticated request, or nil.
func GetClaims(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(claimsKey{}).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// GetOperator returns the authenticated operator's subject, or an empty string.
func GetOperator(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}
