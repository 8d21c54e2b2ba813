package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/crownfall/farm-coordinator/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "farm-coordinator"

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

var (
	repoMetricsOnce sync.Once
	repoCounter     metric.Int64Counter
)

// RecordRepositoryOperation counts one repository call by entity, operation
// and outcome (success, not_found, conflict, error).
func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	repoMetricsOnce.Do(func() {
		counter, err := otel.Meter(meterName).Int64Counter("repository.operations")
		if err == nil {
			repoCounter = counter
		}
	})
	if repoCounter == nil {
		return
	}
	repoCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

var (
	retryMetricsOnce sync.Once
	retryCounter     metric.Int64Counter
)

// RecordTransactionRetry counts one transient-conflict retry of a
// transactional unit at the given isolation level.
func RecordTransactionRetry(ctx context.Context, isolation string) {
	retryMetricsOnce.Do(func() {
		counter, err := otel.Meter(meterName).Int64Counter("store.transaction.retries")
		if err == nil {
			retryCounter = counter
		}
	})
	if retryCounter == nil {
		return
	}
	retryCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("isolation", isolation)))
}

var (
	acquireMetricsOnce sync.Once
	acquireCounter     metric.Int64Counter
)

// RecordResourceAcquisition counts one pool acquisition attempt by resource
// kind (account, lobby, game, vpn) and outcome.
func RecordResourceAcquisition(ctx context.Context, resourceKind, outcome string) {
	acquireMetricsOnce.Do(func() {
		counter, err := otel.Meter(meterName).Int64Counter("pool.acquisitions")
		if err == nil {
			acquireCounter = counter
		}
	})
	if acquireCounter == nil {
		return
	}
	acquireCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", resourceKind),
		attribute.String("outcome", outcome),
	))
}
