package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/auth"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/models"
	"github.com/Lixing-Zhang/striv-storefront/backend/internal/repository"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

// Authenticator resolves a bearer access token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// RequireAuth validates the bearer token and stores the user in the request
// context. Expired tokens are reported with tokenExpired so clients know to
// refresh.
func RequireAuth(authn Authenticator, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, map[string]interface{}{"error": "Access denied. No token provided."})
				return
			}

			user, err := authn.Authenticate(r.Context(), token)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
			case errors.Is(err, auth.ErrTokenExpired):
				writeError(w, http.StatusUnauthorized, map[string]interface{}{"error": "Token expired", "tokenExpired": true})
			case errors.Is(err, auth.ErrTokenInvalid):
				writeError(w, http.StatusUnauthorized, map[string]interface{}{"error": "Invalid token", "tokenExpired": false})
			case errors.Is(err, repository.ErrUserNotFound):
				writeError(w, http.StatusNotFound, map[string]interface{}{"error": "User not found."})
			default:
				log.Error("failed to authenticate request", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusInternalServerError, map[string]interface{}{"error": "Internal server error"})
			}
		})
	}
}

// OptionalAuth attaches the user when a valid token is present and lets the
// request through unauthenticated otherwise.
func OptionalAuth(authn Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if user, err := authn.Authenticate(r.Context(), token); err == nil {
					r = r.WithContext(auth.WithUser(r.Context(), user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			writeError(w, http.StatusForbidden, map[string]interface{}{"error": "Access denied. Admin privileges required."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeError(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
