// Package metrics holds the Prometheus collectors for a livecheck run.
//
// All methods are safe to call on a nil *Metrics, so components can be
// built without instrumentation in tests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for a run.
type Metrics struct {
	DispatchesTotal  prometheus.Counter
	OutcomesTotal    *prometheus.CounterVec
	FetchErrorsTotal *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	InFlight         prometheus.Gauge
	RetryBacklog     prometheus.Gauge
	RateLimitedTotal prometheus.Counter
}

// New registers the livecheck collectors on reg.
// Use a fresh [prometheus.Registry] per run to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DispatchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "livecheck_dispatches_total",
			Help: "Total number of checks dispatched to workers.",
		}),
		OutcomesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livecheck_outcomes_total",
			Help: "Check outcomes by resulting state.",
		}, []string{"state"}), // live, offline, retrying, not_found
		FetchErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livecheck_fetch_errors_total",
			Help: "Fetch failures by kind.",
		}, []string{"kind"}), // transient, fatal
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "livecheck_fetch_duration_seconds",
			Help:    "Duration of page fetches.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livecheck_workers_in_flight",
			Help: "Number of workers currently running.",
		}),
		RetryBacklog: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livecheck_retry_backlog",
			Help: "Number of names waiting out their backoff interval.",
		}),
		RateLimitedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "livecheck_rate_limited_ticks_total",
			Help: "Ticks on which dispatch stopped because the rate window was full.",
		}),
	}
}

func (m *Metrics) IncDispatches() {
	if m == nil {
		return
	}
	m.DispatchesTotal.Inc()
}

func (m *Metrics) IncOutcome(state string) {
	if m == nil {
		return
	}
	m.OutcomesTotal.WithLabelValues(state).Inc()
}

func (m *Metrics) IncFetchError(kind string) {
	if m == nil {
		return
	}
	m.FetchErrorsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveFetch(seconds float64) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(seconds)
}

func (m *Metrics) IncInFlight() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

func (m *Metrics) DecInFlight() {
	if m == nil {
		return
	}
	m.InFlight.Dec()
}

func (m *Metrics) SetRetryBacklog(n int) {
	if m == nil {
		return
	}
	m.RetryBacklog.Set(float64(n))
}

func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedTotal.Inc()
}
