package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for harvest runs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Runs          *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	Candidates    *prometheus.CounterVec
	ParseFailures prometheus.Counter
	Fetches       *prometheus.CounterVec
	Stored        prometheus.Gauge
	LastSuccess   prometheus.Gauge
}

// New registers the harvest collectors with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		// Runs by outcome: "ok" or "error"
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deadlines_harvest_runs_total",
			Help: "Total number of harvest runs by outcome",
		}, []string{"outcome"}),

		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "deadlines_harvest_run_duration_seconds",
			Help:    "Harvest run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),

		// Candidates by verdict outcome: added, updated, skipped, failed
		Candidates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deadlines_harvest_candidates_total",
			Help: "Total number of harvested candidates by outcome",
		}, []string{"outcome"}),

		ParseFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "deadlines_harvest_parse_failures_total",
			Help: "Total number of list items that yielded no deadline",
		}),

		// Fetches by result: "ok", "cached", "error", "disallowed"
		Fetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deadlines_source_fetches_total",
			Help: "Total number of source document fetches by result",
		}, []string{"result"}),

		Stored: f.NewGauge(prometheus.GaugeOpts{
			Name: "deadlines_stored",
			Help: "Number of deadlines in the store after the last run",
		}),

		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "deadlines_harvest_last_success_timestamp_seconds",
			Help: "Unix time of the last successful harvest run",
		}),
	}
}

// RecordRun records a finished harvest run.
func (m *Metrics) RecordRun(seconds float64, added, updated, skipped, failed, parseFailures int, err error) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(seconds)
	m.Candidates.WithLabelValues("added").Add(float64(added))
	m.Candidates.WithLabelValues("updated").Add(float64(updated))
	m.Candidates.WithLabelValues("skipped").Add(float64(skipped))
	m.Candidates.WithLabelValues("failed").Add(float64(failed))
	m.ParseFailures.Add(float64(parseFailures))
	if err != nil {
		m.Runs.WithLabelValues("error").Inc()
		return
	}
	m.Runs.WithLabelValues("ok").Inc()
	m.LastSuccess.SetToCurrentTime()
}

// RecordFetch records one source fetch by result.
func (m *Metrics) RecordFetch(result string) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(result).Inc()
}

// SetStored records the current number of stored deadlines.
func (m *Metrics) SetStored(n int) {
	if m == nil {
		return
	}
	m.Stored.Set(float64(n))
}
