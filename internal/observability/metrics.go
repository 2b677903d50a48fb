package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/product-catalog-service/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
	"go.opentelemetry.io/otel/sdk/resource"
)

type AppMetrics struct {
	catalogReqDuration        metric.Float64Histogram
	catalogOpDuration         metric.Float64Histogram
	listCacheEvents           metric.Int64Counter
	listPageSize              metric.Float64Histogram
	repositoryOpCounter       metric.Int64Counter
	storageOpCounter          metric.Int64Counter
	storageOpDuration         metric.Float64Histogram
	storageUploadBytes        metric.Int64Counter
	idempotencyCounter        metric.Int64Counter
	idempotencyCleanupRuns    metric.Int64Counter
	idempotencyCleanupDeleted metric.Int64Counter
	rateLimitDecisionCounter  metric.Int64Counter
	rateLimitRetryAfter       metric.Float64Histogram
	middlewareValidationCount metric.Int64Counter
	healthCheckResultCounter  metric.Int64Counter
	healthCheckDuration       metric.Float64Histogram
	dbStartupCounter          metric.Int64Counter
	dbStartupDuration         metric.Float64Histogram
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

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
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "catalog.request.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter("product-catalog-service")
	catalogReqDuration, err := meter.Float64Histogram(
		"catalog.request.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of catalog endpoint requests in seconds"),
	)
	if err != nil {
		return nil, err
	}
	catalogOpDuration, err := meter.Float64Histogram(
		"catalog.operation.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of catalog service operations in seconds"),
	)
	if err != nil {
		return nil, err
	}
	listCacheEvents, err := meter.Int64Counter("catalog.list.cache.events")
	if err != nil {
		return nil, err
	}
	listPageSize, err := meter.Float64Histogram(
		"catalog.list.page_size",
		metric.WithDescription("Requested page size for catalog list endpoints"),
	)
	if err != nil {
		return nil, err
	}
	repositoryOpCounter, err := meter.Int64Counter("db.repository.operations")
	if err != nil {
		return nil, err
	}
	storageOpCounter, err := meter.Int64Counter("storage.operations")
	if err != nil {
		return nil, err
	}
	storageOpDuration, err := meter.Float64Histogram(
		"storage.operation.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of object storage operations in seconds"),
	)
	if err != nil {
		return nil, err
	}
	storageUploadBytes, err := meter.Int64Counter(
		"storage.upload.bytes",
		metric.WithUnit("By"),
		metric.WithDescription("Total bytes uploaded to object storage"),
	)
	if err != nil {
		return nil, err
	}
	idempotencyCounter, err := meter.Int64Counter("http.idempotency.events")
	if err != nil {
		return nil, err
	}
	idempotencyCleanupRuns, err := meter.Int64Counter("http.idempotency.cleanup.runs")
	if err != nil {
		return nil, err
	}
	idempotencyCleanupDeleted, err := meter.Int64Counter("http.idempotency.cleanup.deleted_rows")
	if err != nil {
		return nil, err
	}
	rateLimitDecisionCounter, err := meter.Int64Counter("http.rate_limit.decisions")
	if err != nil {
		return nil, err
	}
	rateLimitRetryAfter, err := meter.Float64Histogram(
		"http.rate_limit.retry_after",
		metric.WithUnit("s"),
		metric.WithDescription("Retry-after duration in seconds for throttled requests"),
	)
	if err != nil {
		return nil, err
	}
	middlewareValidationCount, err := meter.Int64Counter("http.middleware.validation.events")
	if err != nil {
		return nil, err
	}
	healthCheckResultCounter, err := meter.Int64Counter("health.check.results")
	if err != nil {
		return nil, err
	}
	healthCheckDuration, err := meter.Float64Histogram(
		"health.check.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of health dependency checks in seconds"),
	)
	if err != nil {
		return nil, err
	}
	dbStartupCounter, err := meter.Int64Counter("db.startup.events")
	if err != nil {
		return nil, err
	}
	dbStartupDuration, err := meter.Float64Histogram(
		"db.startup.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of database migrate and seed phases in seconds"),
	)
	if err != nil {
		return nil, err
	}

	metricsMu.Lock()
	appMetrics = &AppMetrics{
		catalogReqDuration:        catalogReqDuration,
		catalogOpDuration:         catalogOpDuration,
		listCacheEvents:           listCacheEvents,
		listPageSize:              listPageSize,
		repositoryOpCounter:       repositoryOpCounter,
		storageOpCounter:          storageOpCounter,
		storageOpDuration:         storageOpDuration,
		storageUploadBytes:        storageUploadBytes,
		idempotencyCounter:        idempotencyCounter,
		idempotencyCleanupRuns:    idempotencyCleanupRuns,
		idempotencyCleanupDeleted: idempotencyCleanupDeleted,
		rateLimitDecisionCounter:  rateLimitDecisionCounter,
		rateLimitRetryAfter:       rateLimitRetryAfter,
		middlewareValidationCount: middlewareValidationCount,
		healthCheckResultCounter:  healthCheckResultCounter,
		healthCheckDuration:       healthCheckDuration,
		dbStartupCounter:          dbStartupCounter,
		dbStartupDuration:         dbStartupDuration,
	}
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func RecordCatalogRequestDuration(ctx context.Context, endpoint, status string, duration time.Duration) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.catalogReqDuration.Record(
		ctx,
		duration.Seconds(),
		metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("status", status),
		),
	)
}

func RecordCatalogOperation(ctx context.Context, entity, operation, outcome string, duration time.Duration) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.catalogOpDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordListCacheEvent(ctx context.Context, namespace, outcome string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.listCacheEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("namespace", namespace),
		attribute.String("outcome", outcome),
	))
}

func RecordListPageSize(ctx context.Context, endpoint string, pageSize int) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.listPageSize.Record(ctx, float64(pageSize), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
	))
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.repositoryOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordStorageOperation(ctx context.Context, operation, outcome string, duration time.Duration) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.storageOpCounter.Add(ctx, 1, attrs)
	m.storageOpDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

func RecordStorageUploadBytes(ctx context.Context, n int64) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.storageUploadBytes.Add(ctx, n)
}

func RecordIdempotencyEvent(ctx context.Context, scope, outcome string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.idempotencyCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
	))
}

func RecordIdempotencyCleanup(ctx context.Context, outcome string, deleted int64) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.idempotencyCleanupRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
	if deleted > 0 {
		m.idempotencyCleanupDeleted.Add(ctx, deleted)
	}
}

func RecordRateLimitDecision(ctx context.Context, scope, outcome, mode, keyType string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.rateLimitDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
		attribute.String("mode", mode),
		attribute.String("key_type", keyType),
	))
}

func RecordRateLimitRetryAfter(ctx context.Context, scope, reason string, retryAfter time.Duration) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.rateLimitRetryAfter.Record(ctx, retryAfter.Seconds(), metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("reason", reason),
	))
}

func RecordMiddlewareValidationEvent(ctx context.Context, component, outcome string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.middlewareValidationCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("check", check),
	))
}

func RecordDatabaseStartupEvent(ctx context.Context, phase, outcome string) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.dbStartupCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.String("outcome", outcome),
	))
}

func RecordDatabaseStartupDuration(ctx context.Context, phase string, duration time.Duration) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	m.dbStartupDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("phase", phase),
	))
}
