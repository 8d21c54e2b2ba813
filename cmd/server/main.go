package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/crownfall/farm-coordinator/internal/app"
	"github.com/crownfall/farm-coordinator/internal/config"
	"github.com/crownfall/farm-coordinator/internal/health"
	"github.com/crownfall/farm-coordinator/internal/http/handler"
	"github.com/crownfall/farm-coordinator/internal/http/router"
	"github.com/crownfall/farm-coordinator/internal/observability"
	"github.com/crownfall/farm-coordinator/internal/security"
	"github.com/crownfall/farm-coordinator/internal/service"
	"github.com/crownfall/farm-coordinator/internal/storage"
)

func main() {
	root := &cobra.Command{
		Use:           "farm-coordinator",
		Short:         "Coordinates farm clients over a shared account pool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			store, err := storage.Open(cfg.DatabaseURL, logger)
			if err != nil {
				return err
			}
			if err := store.Migrate(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("schema up to date")
			return nil
		},
	}
}

func newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	return logger
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logger, loggerProvider, err := observability.InitLogging(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	slog.SetDefault(logger)

	runtime, err := observability.InitRuntime(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}
	runtime.LoggerProvider = loggerProvider

	store, err := storage.Open(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var settingsStore service.SettingsStore
	checks := []health.Check{{Name: "database", Probe: store.Ping}}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		settingsStore = service.NewRedisSettingsStore(redisClient, "settings")
		checks = append(checks, health.Check{
			Name:  "redis",
			Probe: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	} else {
		logger.Warn("REDIS_ADDR not set, runtime settings are process-local")
		settingsStore = service.NewInMemorySettingsStore()
	}

	jwt := security.NewJWTManager(cfg.OTELServiceName, cfg.JWTSecretKey)
	users := service.NewUserService(store, logger, jwt, 24*time.Hour)
	clients := service.NewClientService(store, logger, cfg.FarmCooldown, cfg.FarmWindow)
	reports := service.NewReportService(store, logger)
	accounts := service.NewAccountService(store, logger)
	vpn := service.NewVPNService(store, logger, cfg.VPNWindow)
	launcher := service.NewLauncherService(store, logger, cfg.LauncherDir)
	settings := service.NewSettingsService(settingsStore)

	h := router.NewRouter(router.Dependencies{
		ClientHandler:    handler.NewClientHandler(clients, reports),
		UserHandler:      handler.NewUserHandler(users),
		AccountHandler:   handler.NewAccountHandler(accounts),
		VPNHandler:       handler.NewVPNHandler(vpn),
		LauncherHandler:  handler.NewLauncherHandler(launcher),
		SettingsHandler:  handler.NewSettingsHandler(settings),
		TokenVerifier:    users,
		ServiceGate:      settings,
		APISecretKey:     cfg.APISecretKey,
		Logger:           logger,
		AuthRateLimitRPM: 60,
		APIRateLimitRPM:  1200,
		Readiness:        health.NewProbeRunner(2*time.Second, checks...),
		EnableOTelHTTP:   cfg.OTELTracesEnabled,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return app.New(cfg, logger, server, runtime).Run(ctx)
}
