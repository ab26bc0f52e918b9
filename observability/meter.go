package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/etlkit/logger"
	"github.com/kbukum/etlkit/version"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.Short(),
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The provider should be shut down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the pipeline metric instruments.
type Metrics struct {
	extracted     metric.Int64Counter
	transformed   metric.Int64Counter
	filtered      metric.Int64Counter
	loaded        metric.Int64Counter
	parseErrors   metric.Int64Counter
	stageDuration metric.Float64Histogram
	errorTotal    metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.extracted, "etl.records.extracted", "Records parsed from sources"},
		{&m.transformed, "etl.records.transformed", "Elements produced by transform stages"},
		{&m.filtered, "etl.records.filtered", "Elements kept by filter stages"},
		{&m.loaded, "etl.records.loaded", "Elements accepted by sinks"},
		{&m.parseErrors, "etl.parse.errors", "Records that failed to parse"},
		{&m.errorTotal, "etl.errors", "Pipeline errors by code and stage"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", c.name, err)
		}
		*c.dst = counter
	}

	stageDuration, err := meter.Float64Histogram("etl.stage.duration",
		metric.WithDescription("Duration of pipeline stages in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating etl.stage.duration histogram: %w", err)
	}
	m.stageDuration = stageDuration

	return &m, nil
}

// RecordExtracted records parsed records and parse errors for a recipe.
func (m *Metrics) RecordExtracted(ctx context.Context, recipe string, records, parseErrors int) {
	attrs := metric.WithAttributes(attribute.String(AttrRecipe, recipe))
	m.extracted.Add(ctx, int64(records), attrs)
	if parseErrors > 0 {
		m.parseErrors.Add(ctx, int64(parseErrors), attrs)
	}
}

// RecordStage records the output size and duration of a stage. The stage
// kind selects the counter: transform, filter or load.
func (m *Metrics) RecordStage(ctx context.Context, recipe, stage, kind string, count int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrRecipe, recipe),
		attribute.String(AttrStage, stage),
	)
	switch kind {
	case StageKindTransform:
		m.transformed.Add(ctx, int64(count), attrs)
	case StageKindFilter:
		m.filtered.Add(ctx, int64(count), attrs)
	case StageKindLoad:
		m.loaded.Add(ctx, int64(count), attrs)
	}
	m.stageDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordError records an error by code and stage.
func (m *Metrics) RecordError(ctx context.Context, code, stage string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrErrorCode, code),
		attribute.String(AttrStage, stage),
	))
}
