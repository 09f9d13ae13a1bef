package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncRun("success")
	m.IncRun("success")
	m.IncIssue("DATA", "extract biography")
	m.IncCacheLookup("hit")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IssuesTotal.WithLabelValues("DATA", "extract biography")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncRun("success")
		m.IncIssue("DATA", "x")
		m.ObserveFetch("http", 1)
		m.IncCacheLookup("miss")
	})
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.IncRun("critical")

	path := filepath.Join(t.TempDir(), "memorial.prom")
	require.NoError(t, m.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `memorial_runs_total{status="critical"} 1`)
}
