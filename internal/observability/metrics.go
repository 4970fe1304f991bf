package observability

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "wf-exporter"

// Metrics holds the export run instruments. Each Metrics owns its registry so
// that runs in one process never share counters.
type Metrics struct {
	registry *promclient.Registry
	provider *sdkmetric.MeterProvider

	ItemsTotal     metric.Int64Counter
	RewrittenTotal metric.Int64Counter
	WarningsTotal  metric.Int64Counter
	ItemDuration   metric.Float64Histogram
}

// NewMetrics creates the instruments backed by a Prometheus exporter.
func NewMetrics() (*Metrics, error) {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(meterName)

	m := &Metrics{registry: registry, provider: provider}

	m.ItemsTotal, err = meter.Int64Counter(
		"wf_exporter_items_total",
		metric.WithDescription("Exported jobs and pipelines by outcome"),
	)
	if err != nil {
		return nil, err
	}

	m.RewrittenTotal, err = meter.Int64Counter(
		"wf_exporter_rewritten_paths_total",
		metric.WithDescription("Path fields rewritten"),
	)
	if err != nil {
		return nil, err
	}

	m.WarningsTotal, err = meter.Int64Counter(
		"wf_exporter_warnings_total",
		metric.WithDescription("Non-fatal findings recorded on item results"),
	)
	if err != nil {
		return nil, err
	}

	m.ItemDuration, err = meter.Float64Histogram(
		"wf_exporter_item_duration_seconds",
		metric.WithDescription("Time to process one job or pipeline"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordItem records one processed item.
func (m *Metrics) RecordItem(ctx context.Context, kind, outcome string, rewritten, warnings int, durationSeconds float64) {
	if m == nil {
		return
	}

	m.ItemsTotal.Add(ctx, 1, metric.WithAttributes(kindAttr(kind), outcomeAttr(outcome)))
	m.ItemDuration.Record(ctx, durationSeconds, metric.WithAttributes(kindAttr(kind)))

	if rewritten > 0 {
		m.RewrittenTotal.Add(ctx, int64(rewritten), metric.WithAttributes(kindAttr(kind)))
	}

	if warnings > 0 {
		m.WarningsTotal.Add(ctx, int64(warnings), metric.WithAttributes(kindAttr(kind)))
	}
}

// WriteTextfile writes the current values in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}

	if err := promclient.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}

	return nil
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() promclient.Gatherer {
	return m.registry
}

// Shutdown flushes and stops the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
