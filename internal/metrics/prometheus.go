package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector provides Prometheus metrics for relink operations.
type PrometheusCollector struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	referencesTotal   *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	snapshotCount     prometheus.Gauge
	registry          *prometheus.Registry
}

var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates a collector with its own registry.
func NewPrometheusCollector() *PrometheusCollector {
	registry := prometheus.NewRegistry()

	operationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relink_operations_total",
			Help: "Total number of relink engine operations by type and status",
		},
		[]string{"operation", "status"},
	)

	operationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relink_operation_duration_seconds",
			Help:    "Duration of relink engine operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"operation"},
	)

	referencesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relink_references_total",
			Help: "References processed by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relink_errors_total",
			Help: "Total number of errors by operation and error type",
		},
		[]string{"operation", "error_type"},
	)

	snapshotCount := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relink_snapshots",
			Help: "Number of stored path snapshots",
		},
	)

	registry.MustRegister(operationsTotal)
	registry.MustRegister(operationDuration)
	registry.MustRegister(referencesTotal)
	registry.MustRegister(errorsTotal)
	registry.MustRegister(snapshotCount)

	return &PrometheusCollector{
		operationsTotal:   operationsTotal,
		operationDuration: operationDuration,
		referencesTotal:   referencesTotal,
		errorsTotal:       errorsTotal,
		snapshotCount:     snapshotCount,
		registry:          registry,
	}
}

// RecordOperation records the completion of an operation.
func (m *PrometheusCollector) RecordOperation(ctx context.Context, operation string, status string, durationMs int64) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(float64(durationMs) / 1000.0)
}

// RecordReferences adds n to the reference counter for operation and outcome.
func (m *PrometheusCollector) RecordReferences(ctx context.Context, operation string, outcome string, n int) {
	if n <= 0 {
		return
	}
	m.referencesTotal.WithLabelValues(operation, outcome).Add(float64(n))
}

// RecordError records an error occurrence.
func (m *PrometheusCollector) RecordError(ctx context.Context, operation string, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}

// SetSnapshotCount sets the stored snapshot gauge.
func (m *PrometheusCollector) SetSnapshotCount(ctx context.Context, count int64) {
	m.snapshotCount.Set(float64(count))
}

// Registry returns the Prometheus registry.
func (m *PrometheusCollector) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current metrics to path in the Prometheus text
// exposition format, for pickup by a node exporter textfile collector.
func (m *PrometheusCollector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
