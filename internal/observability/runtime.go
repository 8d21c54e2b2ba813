package observability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/crownfall/farm-coordinator/internal/config"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Runtime owns the OTel providers for the coordinator process. Each
// provider is optional; a nil provider means that signal is disabled
// by configuration and Shutdown skips it.
type Runtime struct {
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider
	LoggerProvider *sdklog.LoggerProvider
}

// InitRuntime wires metrics first so acquisition counters exist before
// the HTTP listener starts accepting farm traffic.
func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	meters, err := InitMetrics(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	tracers, err := InitTracing(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Runtime{MeterProvider: meters, TracerProvider: tracers}, nil
}

// Shutdown flushes every provider and reports every failure, not just
// the first one, so a broken collector endpoint surfaces per signal.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var metricErr, traceErr, logErr error
	if r.MeterProvider != nil {
		metricErr = r.MeterProvider.Shutdown(ctx)
	}
	if r.TracerProvider != nil {
		traceErr = r.TracerProvider.Shutdown(ctx)
	}
	if r.LoggerProvider != nil {
		logErr = r.LoggerProvider.Shutdown(ctx)
	}
	return errors.Join(metricErr, traceErr, logErr)
}
