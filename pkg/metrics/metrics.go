package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Gatherer prometheus.Gatherer

	RunsTotal           *prometheus.CounterVec
	IssuesTotal         *prometheus.CounterVec
	FetchDuration       *prometheus.HistogramVec
	CacheLookups        *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers the metrics on reg. reg must also be a Gatherer for
// WriteTextfile and the /metrics handler to see them.
func New(reg interface {
	prometheus.Registerer
	prometheus.Gatherer
}) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Gatherer: reg,
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memorial_runs_total",
			Help: "Total number of extraction runs.",
		}, []string{"status"}), // success, critical, save
		IssuesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memorial_issues_total",
			Help: "Issues reported by extraction steps.",
		}, []string{"tag", "step"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "memorial_fetch_duration_seconds",
			Help:    "Duration of page loads.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"loader"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memorial_page_cache_lookups_total",
			Help: "Page cache lookups by result.",
		}, []string{"result"}), // hit, miss, error
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) IncRun(status string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) IncIssue(tag, step string) {
	if m == nil {
		return
	}
	m.IssuesTotal.WithLabelValues(tag, step).Inc()
}

func (m *Metrics) ObserveFetch(loader string, seconds float64) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(loader).Observe(seconds)
}

func (m *Metrics) IncCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// WriteTextfile dumps the current metric values in the text exposition
// format, for node_exporter's textfile collector after a CLI run.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Gatherer)
}
