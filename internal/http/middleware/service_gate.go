package middleware

import (
	"context"
	"net/http"

	"github.com/crownfall/farm-coordinator/internal/http/response"
)

// ServiceGate closes acquisition endpoints while operators drain the farm.
type ServiceGate interface {
	ServiceEnabled(ctx context.Context) (bool, error)
}

func RequireServiceEnabled(gate ServiceGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			enabled, err := gate.ServiceEnabled(r.Context())
			if err != nil {
				response.Error(w, r, http.StatusServiceUnavailable, "SETTINGS_UNAVAILABLE", "settings store unavailable")
				return
			}
			if !enabled {
				response.Error(w, r, http.StatusServiceUnavailable, "SERVICE_DISABLED", "service is temporarily disabled")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
