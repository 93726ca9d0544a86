package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RegisterOnFreshRegistry(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()

	require.NoError(t, reg.Register(m.Predictions))
	for _, c := range m.collectors() {
		if c == m.Predictions {
			continue
		}
		assert.NoError(t, reg.Register(c))
	}
}

func TestMetrics_CounterVecLabels(t *testing.T) {
	m := NewMetricsForTesting()

	m.SourceCache.WithLabelValues("hit").Inc()
	m.SourceCache.WithLabelValues("corrupt").Inc()
	m.SourceCache.WithLabelValues("corrupt").Inc()
	m.Predictions.WithLabelValues("invalid").Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(m.SourceCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.SourceCache.WithLabelValues("corrupt")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Predictions.WithLabelValues("invalid")), 0)
}
