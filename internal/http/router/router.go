package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/crownfall/farm-coordinator/internal/health"
	"github.com/crownfall/farm-coordinator/internal/http/handler"
	"github.com/crownfall/farm-coordinator/internal/http/middleware"
	"github.com/crownfall/farm-coordinator/internal/http/response"
)

type Dependencies struct {
	ClientHandler    *handler.ClientHandler
	UserHandler      *handler.UserHandler
	AccountHandler   *handler.AccountHandler
	VPNHandler       *handler.VPNHandler
	LauncherHandler  *handler.LauncherHandler
	SettingsHandler  *handler.SettingsHandler
	TokenVerifier    middleware.TokenVerifier
	ServiceGate      middleware.ServiceGate
	APISecretKey     string
	Logger           *slog.Logger
	AuthRateLimitRPM int
	APIRateLimitRPM  int
	Readiness        *health.ProbeRunner
	EnableOTelHTTP   bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger(dep.Logger))
	r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware())

	authLimiter := middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute).Middleware()
	jwtAuth := middleware.JWTAuth(dep.TokenVerifier)
	apiKey := middleware.APIKeyAuth(dep.APISecretKey)
	gate := middleware.RequireServiceEnabled(dep.ServiceGate)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.With(authLimiter).Post("/register", dep.UserHandler.Register)
			r.With(authLimiter).Post("/token", dep.UserHandler.Token)
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth)
				r.Get("/me", dep.UserHandler.Me)
				r.Get("/me/clients", dep.UserHandler.Clients)
				r.Get("/me/accounts", dep.UserHandler.Accounts)
				r.Get("/me/reports", dep.UserHandler.Reports)
				r.With(middleware.RequireAdmin).Get("/", dep.UserHandler.List)
				r.With(middleware.RequireAdmin).Patch("/{id}", dep.UserHandler.Update)
			})
		})

		// Agent surface. Farm clients authenticate with the shared key;
		// acquisition endpoints additionally honor the service gate.
		r.Route("/clients", func(r chi.Router) {
			r.Use(apiKey)
			r.Get("/", dep.ClientHandler.List)
			r.Post("/", dep.ClientHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", dep.ClientHandler.Get)
				r.Patch("/", dep.ClientHandler.Update)
				r.Delete("/", dep.ClientHandler.Delete)
				r.Post("/success", dep.ClientHandler.Success)
				r.Post("/reports", dep.ClientHandler.CreateReport)
				r.Get("/reports", dep.ClientHandler.ListReports)
				r.Route("/session", func(r chi.Router) {
					r.With(gate).Post("/account", dep.ClientHandler.AcquireAccount)
					r.With(gate).Post("/lobby", dep.ClientHandler.AcquireLobby)
					r.With(gate).Post("/game", dep.ClientHandler.AcquireGame)
					r.Get("/lobby", dep.ClientHandler.GetLobby)
					r.Put("/lobby/steam-id", dep.ClientHandler.SetLobbySteamID)
					r.Put("/lobby/state", dep.ClientHandler.SetLobbyState)
					r.Put("/accepted", dep.ClientHandler.SetAccepted)
					r.Put("/loaded", dep.ClientHandler.SetLoaded)
					r.Get("/game", dep.ClientHandler.GetGame)
					r.Put("/account/farmed", dep.ClientHandler.SetAccountFarmed)
					r.Put("/account/failed", dep.ClientHandler.SetAccountFailed)
					r.Delete("/", dep.ClientHandler.Release)
				})
			})
		})

		r.Route("/accounts", func(r chi.Router) {
			r.With(apiKey).Get("/{username}", dep.AccountHandler.Get)
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth)
				r.Post("/", dep.AccountHandler.Create)
				r.Delete("/{username}", dep.AccountHandler.Delete)
			})
		})

		r.Route("/vpn", func(r chi.Router) {
			r.Use(apiKey)
			r.Get("/", dep.VPNHandler.List)
			r.Post("/acquire", dep.VPNHandler.Acquire)
		})
		r.With(jwtAuth, middleware.RequireAdmin).Post("/vpn", dep.VPNHandler.Create)

		r.Route("/launcher", func(r chi.Router) {
			r.Get("/", dep.LauncherHandler.Get)
			r.Get("/download", dep.LauncherHandler.Download)
			r.With(jwtAuth, middleware.RequireAdmin).Put("/version", dep.LauncherHandler.SetVersion)
		})

		r.Route("/settings", func(r chi.Router) {
			r.With(apiKey).Get("/status", dep.SettingsHandler.GetStatus)
			r.With(apiKey).Get("/server", dep.SettingsHandler.GetServer)
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth, middleware.RequireAdmin)
				r.Put("/status", dep.SettingsHandler.SetStatus)
				r.Put("/server", dep.SettingsHandler.SetServer)
			})
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
