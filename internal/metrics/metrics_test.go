package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New()

	m.RecordResolution("exact")
	m.RecordResolution("exact")
	m.RecordResolution("loose")
	m.RecordUnresolved()
	m.RecordSearchFailure("contextual")
	m.RecordExport("success")
	m.RecordRetry()
	m.ObserveMatchRate(75)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("exact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("loose")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Unresolved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchFailures.WithLabelValues("contextual")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exports.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogRetries))
	assert.Equal(t, 1, testutil.CollectAndCount(m.MatchRate))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordResolution("exact")
		m.RecordUnresolved()
		m.RecordSearchFailure("exact")
		m.RecordExport("failed")
		m.RecordRetry()
		m.ObserveMatchRate(10)
	})

	samples, err := m.Snapshot()
	require.NoError(t, err)
	assert.Nil(t, samples)
}

func TestSnapshot(t *testing.T) {
	m := New()
	m.RecordResolution("loose")
	m.ObserveMatchRate(40)
	m.ObserveMatchRate(60)

	samples, err := m.Snapshot()
	require.NoError(t, err)

	byName := map[string]Sample{}
	for _, s := range samples {
		byName[s.Name] = s
	}

	require.Contains(t, byName, "tunesmith_resolutions_total")
	assert.Equal(t, "loose", byName["tunesmith_resolutions_total"].Labels["attempt"])
	assert.Equal(t, 1.0, byName["tunesmith_resolutions_total"].Value)

	assert.Equal(t, 2.0, byName["tunesmith_export_match_rate_count"].Value)
	assert.Equal(t, 100.0, byName["tunesmith_export_match_rate_sum"].Value)

	assert.Equal(t, 0.0, byName["tunesmith_unresolved_total"].Value)

	for i := 1; i < len(samples); i++ {
		assert.LessOrEqual(t, samples[i-1].Name, samples[i].Name)
	}
}
