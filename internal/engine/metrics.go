package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
)

// Metrics records run counters and durations. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	runsStarted  prometheus.Counter
	runsFinished *prometheus.CounterVec
	runDuration  prometheus.Histogram
}

// NewMetrics creates engine metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mproc",
			Subsystem: "engine",
			Name:      "runs_started_total",
			Help:      "Number of workflow runs started.",
		}),
		runsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mproc",
			Subsystem: "engine",
			Name:      "runs_finished_total",
			Help:      "Number of workflow runs finished, by terminal state.",
		}, []string{"state"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mproc",
			Subsystem: "engine",
			Name:      "run_duration_seconds",
			Help:      "Wall time of finished workflow runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.runsStarted, m.runsFinished, m.runDuration)
	}
	return m
}

// RunStarted counts a started run.
func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.runsStarted.Inc()
}

// RunFinished counts a finished run and observes its duration.
func (m *Metrics) RunFinished(state model.RunState, d time.Duration) {
	if m == nil {
		return
	}
	m.runsFinished.WithLabelValues(state.String()).Inc()
	m.runDuration.Observe(d.Seconds())
}
