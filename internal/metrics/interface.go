// Package metrics records relink engine activity.
package metrics

import "context"

// Collector is the interface for metrics collection. Implementations are the
// Prometheus-backed collector and the no-op collector.
type Collector interface {
	// RecordOperation counts one engine operation by name and status.
	RecordOperation(ctx context.Context, operation string, status string, durationMs int64)

	// RecordReferences counts references processed by an operation,
	// split by outcome (rewritten, skipped, failed).
	RecordReferences(ctx context.Context, operation string, outcome string, n int)

	// RecordError counts an error by operation and error type.
	RecordError(ctx context.Context, operation string, errorType string)

	// SetSnapshotCount sets the number of stored snapshots.
	SetSnapshotCount(ctx context.Context, count int64)
}

// Operation status labels.
const (
	StatusSuccess = "success"
	StatusNoop    = "noop"
	StatusFailure = "failure"
)

// Reference outcome labels.
const (
	OutcomeRewritten = "rewritten"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)
