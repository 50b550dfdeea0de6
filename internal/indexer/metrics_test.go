package indexer

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	ix, _ := setup(t, fixtureRepo(t), Options{Metrics: m})

	_, err := ix.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.filesByTier.WithLabelValues("1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.filesByType.WithLabelValues("config")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.edges))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.diagnostics))
	assert.Equal(t, 1, testutil.CollectAndCount(m.runDuration))
	assert.Positive(t, testutil.ToFloat64(m.lastSuccess))

	_, err = ix.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, testutil.CollectAndCount(m.runDuration), "full and incremental series")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observe(newStats(false)) })
}
