package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/crownfall/farm-coordinator/internal/domain"
	"github.com/crownfall/farm-coordinator/internal/http/response"
)

type contextKey string

const UserContextKey contextKey = "user"

// TokenVerifier resolves a bearer token to the user it was issued for.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, raw string) (*domain.User, error)
}

// JWTAuth authenticates operator endpoints. The resolved user is placed in
// the request context; disabled users are rejected here rather than in every
// handler.
func JWTAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token")
				return
			}
			raw := strings.TrimSpace(auth[7:])
			user, err := verifier.VerifyToken(r.Context(), raw)
			if err != nil {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token")
				return
			}
			if !user.Status {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "user is disabled")
				return
			}
			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(UserContextKey).(*domain.User)
	return u, ok
}

// RequireAdmin gates management endpoints. It must run after JWTAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
			return
		}
		if !user.Admin {
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// APIKeyAuth authenticates farm agents. Agents hold one shared key and
// present it on every request.
func APIKeyAuth(secret string) func(http.Handler) http.Handler {
	expected := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get("X-API-Key"))
			if len(expected) == 0 || subtle.ConstantTimeCompare(expected, got) != 1 {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
