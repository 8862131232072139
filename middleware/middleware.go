package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/KoltaG/thesis-pm-api/logging"
	"github.com/KoltaG/thesis-pm-api/models"
	"github.com/KoltaG/thesis-pm-api/services"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// ClaimsFromContext returns the identity the auth gate attached to the request.
func ClaimsFromContext(ctx context.Context) (*services.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*services.Claims)
	return claims, ok
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// Authenticate extracts and verifies the bearer token and attaches the
// decoded identity to the request context.
func Authenticate(jwtService *services.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logging.Logger.Warnf("Event ID: AUTH_MISSING_TOKEN, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
				jsonError(w, "No token, authorization denied", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := jwtService.ValidateToken(tokenStr)
			if err != nil {
				logging.Logger.Warnf("Event ID: AUTH_INVALID_TOKEN, Description: Invalid token for request to %s %s: %v", r.Method, r.URL.Path, err)
				jsonError(w, "Token is not valid", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles terminates requests whose attached identity's role is not in
// the allowed set. It must be chained after Authenticate; a request with no
// identity is rejected outright.
func RequireRoles(allowedRoles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				jsonError(w, "Unauthorized: No user information found", http.StatusUnauthorized)
				return
			}

			for _, role := range allowedRoles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logging.Logger.Warnf("Event ID: ROLE_FORBIDDEN, Description: Role %s not allowed for request to %s %s", claims.Role, r.Method, r.URL.Path)
			jsonError(w, "Forbidden: You do not have access to this resource", http.StatusForbidden)
		})
	}
}
