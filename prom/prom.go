// Package prom exports offload lifecycle events as Prometheus metrics.
//
// Create a [Metrics] against your registerer, then pass its Hooks to
// NewCapacityLimiter or the adapter's WithHooks option. Several
// limiters may share one Metrics; the series are aggregates.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/offload-dev/offload"
)

// Metrics holds the collectors fed by the hooks returned from
// [Metrics.Hooks].
type Metrics struct {
	Acquired       prometheus.Counter
	Waited         prometheus.Counter
	Released       prometheus.Counter
	Rejected       *prometheus.CounterVec
	InFlight       prometheus.Gauge
	TasksSubmitted prometheus.Counter
	TasksFailed    prometheus.Counter
	TaskDuration   prometheus.Histogram
}

// New creates the offload collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Acquired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "offload",
			Name:      "acquired_total",
			Help:      "Limiter slots granted, including handoffs to waiters.",
		}),
		Waited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "offload",
			Name:      "waited_total",
			Help:      "Acquire calls that had to queue behind a saturated limiter.",
		}),
		Released: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "offload",
			Name:      "released_total",
			Help:      "Limiter slots returned.",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "offload",
			Name:      "rejected_total",
			Help:      "Calls rejected because the named limiter was not registered.",
		}, []string{"limiter"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "offload",
			Name:      "in_flight",
			Help:      "Currently admitted holders.",
		}),
		TasksSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "offload",
			Name:      "tasks_submitted_total",
			Help:      "Blocking tasks handed to the worker pool.",
		}),
		TasksFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "offload",
			Name:      "tasks_failed_total",
			Help:      "Blocking tasks that returned an error.",
		}),
		TaskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "offload",
			Name:      "task_duration_seconds",
			Help:      "Blocking task duration from submission to completion.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.Acquired, m.Waited, m.Released, m.Rejected,
		m.InFlight, m.TasksSubmitted, m.TasksFailed, m.TaskDuration,
	)

	return m
}

// Hooks returns an offload.Hooks wired to m's collectors. The returned
// value is freshly allocated on each call and must not be mutated.
func (m *Metrics) Hooks() *offload.Hooks {
	return &offload.Hooks{
		OnAcquired: func() {
			m.Acquired.Inc()
			m.InFlight.Inc()
		},
		OnWaiting: func() {
			m.Waited.Inc()
		},
		OnReleased: func() {
			m.Released.Inc()
			m.InFlight.Dec()
		},
		OnRejected: func(name string) {
			m.Rejected.WithLabelValues(name).Inc()
		},
		OnTaskSubmitted: func() {
			m.TasksSubmitted.Inc()
		},
		OnTaskDone: func(d time.Duration, err error) {
			m.TaskDuration.Observe(d.Seconds())
			if err != nil {
				m.TasksFailed.Inc()
			}
		},
	}
}
