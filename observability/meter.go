package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/execkit/logger"
)

// InitMeter installs a global meter provider exporting to cfg.Endpoint
// every cfg.MetricInterval. The returned provider should be shut down on exit.
func InitMeter(ctx context.Context, cfg *Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Get("observability").Debug("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric instrument names.
const (
	MetricExecutions = "process.executions"
	MetricDuration   = "process.duration"
	MetricActive     = "process.active"
)

// ExecutionMetrics holds the instruments recorded around each child process.
type ExecutionMetrics struct {
	executions metric.Int64Counter
	duration   metric.Float64Histogram
	active     metric.Int64UpDownCounter
}

// NewExecutionMetrics creates the execution instruments on meter.
func NewExecutionMetrics(meter metric.Meter) (*ExecutionMetrics, error) {
	executions, err := meter.Int64Counter(MetricExecutions,
		metric.WithDescription("Child processes run, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricExecutions, err)
	}

	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Wall-clock duration of child processes in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricDuration, err)
	}

	active, err := meter.Int64UpDownCounter(MetricActive,
		metric.WithDescription("Child processes currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricActive, err)
	}

	return &ExecutionMetrics{
		executions: executions,
		duration:   duration,
		active:     active,
	}, nil
}

type metricsKey struct {
	provider metric.MeterProvider
	scope    string
}

var executionMetricsCache sync.Map // metricsKey -> *ExecutionMetrics

// ExecutionMetricsFor returns the execution instruments of the global meter
// provider under scope. They are created once per provider, so installing a
// new provider yields fresh instruments bound to it.
func ExecutionMetricsFor(scope string) (*ExecutionMetrics, error) {
	key := metricsKey{provider: otel.GetMeterProvider(), scope: scope}
	if cached, ok := executionMetricsCache.Load(key); ok {
		return cached.(*ExecutionMetrics), nil
	}

	m, err := NewExecutionMetrics(key.provider.Meter(scope))
	if err != nil {
		return nil, err
	}
	actual, _ := executionMetricsCache.LoadOrStore(key, m)
	return actual.(*ExecutionMetrics), nil
}

// RecordStart increments the running count.
func (m *ExecutionMetrics) RecordStart(ctx context.Context) {
	m.active.Add(ctx, 1)
}

// RecordEnd decrements the running count and records the finished execution.
func (m *ExecutionMetrics) RecordEnd(ctx context.Context, binary, outcome string, duration time.Duration) {
	m.active.Add(ctx, -1)
	m.executions.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrBinary, binary),
		attribute.String(AttrOutcome, outcome),
	))
	m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrBinary, binary),
	))
}
