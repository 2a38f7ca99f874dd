package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector(t *testing.T) {
	ctx := context.Background()
	m := NewPrometheusCollector()

	m.RecordOperation(ctx, "relink", StatusSuccess, 12)
	m.RecordOperation(ctx, "relink", StatusSuccess, 3)
	m.RecordOperation(ctx, "relink", StatusNoop, 1)
	m.RecordReferences(ctx, "relink", OutcomeRewritten, 4)
	m.RecordReferences(ctx, "relink", OutcomeSkipped, 0)
	m.RecordError(ctx, "save_state", "version_exists")
	m.SetSnapshotCount(ctx, 7)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("relink", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("relink", StatusNoop)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.referencesTotal.WithLabelValues("relink", OutcomeRewritten)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal.WithLabelValues("save_state", "version_exists")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.snapshotCount))
	assert.Equal(t, 1, testutil.CollectAndCount(m.referencesTotal))
}

func TestPrometheusCollector_WriteTextfile(t *testing.T) {
	m := NewPrometheusCollector()
	m.RecordOperation(context.Background(), "load_state", StatusSuccess, 5)

	path := filepath.Join(t.TempDir(), "relink.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `relink_operations_total{operation="load_state",status="success"} 1`)
}

func TestNoopCollector(t *testing.T) {
	var c Collector = NewNoopCollector()
	c.RecordOperation(context.Background(), "relink", StatusSuccess, 1)
	c.RecordReferences(context.Background(), "relink", OutcomeRewritten, 1)
	c.RecordError(context.Background(), "relink", "x")
	c.SetSnapshotCount(context.Background(), 1)
}
