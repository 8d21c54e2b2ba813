package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"APP_ENV" envDefault:"dev"`

	ServerHost      string        `env:"SERVER_HOST" envDefault:"127.0.0.1"`
	ServerPort      int           `env:"SERVER_PORT" envDefault:"8000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisAddr   string `env:"REDIS_ADDR"`

	JWTSecretKey string `env:"JWT_SECRET_KEY"`
	APISecretKey string `env:"API_SECRET_KEY"`

	LauncherDir string `env:"LAUNCHER_DIR" envDefault:"files"`

	// Resource pool tuning. FarmCooldown is the minimum time since release
	// before an account is eligible again; the windows bound the random
	// pick used to spread concurrent acquirers.
	FarmCooldown time.Duration `env:"FARM_COOLDOWN" envDefault:"15m"`
	FarmWindow   int           `env:"FARM_WINDOW" envDefault:"50"`
	VPNWindow    int           `env:"VPN_WINDOW" envDefault:"3"`

	OTELServiceName           string        `env:"OTEL_SERVICE_NAME" envDefault:"farm-coordinator"`
	OTELEnvironment           string        `env:"OTEL_ENVIRONMENT" envDefault:"dev"`
	OTELExporterOTLPEndpoint  string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTELExporterOTLPInsecure  bool          `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	OTELMetricsEnabled        bool          `env:"OTEL_METRICS_ENABLED" envDefault:"false"`
	OTELLogsEnabled           bool          `env:"OTEL_LOGS_ENABLED" envDefault:"false"`
	OTELTracesEnabled         bool          `env:"OTEL_TRACES_ENABLED" envDefault:"false"`
	OTELMetricsExportInterval time.Duration `env:"OTEL_METRICS_EXPORT_INTERVAL" envDefault:"60s"`
}

func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		err = fmt.Errorf("parse env: %w", err)
		recordConfigValidationEvent(ctx, cfg.Environment, "error", classifyConfigLoadError(err))
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		recordConfigValidationEvent(ctx, cfg.Environment, "error", classifyConfigLoadError(err))
		return nil, err
	}
	recordConfigValidationEvent(ctx, cfg.Environment, "success", "none")
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("validate config: DATABASE_URL is required")
	}
	if c.JWTSecretKey == "" {
		return fmt.Errorf("validate config: JWT_SECRET_KEY is required")
	}
	if c.APISecretKey == "" {
		return fmt.Errorf("validate config: API_SECRET_KEY is required")
	}
	if c.FarmWindow <= 0 {
		return fmt.Errorf("validate config: FARM_WINDOW must be positive")
	}
	if c.VPNWindow <= 0 {
		return fmt.Errorf("validate config: VPN_WINDOW must be positive")
	}
	return nil
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}
