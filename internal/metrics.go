package internal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus metrics of a runtime.
type metrics struct {
	flushes       prometheus.Counter
	watcherRuns   prometheus.Counter
	infiniteLoops prometheus.Counter
	flushDuration prometheus.Histogram
	queueLength   prometheus.Histogram
	reports       *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer, namespace string) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "flushes_total",
			Help:      "Total number of scheduler flushes",
		}),

		watcherRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "watcher_runs_total",
			Help:      "Total number of watchers run by the scheduler",
		}),

		infiniteLoops: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "infinite_loops_total",
			Help:      "Total number of flushes aborted because a watcher kept re-queueing itself",
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "flush_duration_seconds",
			Help:      "Time spent running one flush",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),

		queueLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "queue_length",
			Help:      "Number of watchers processed per flush",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),

		reports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Total number of reported warnings and errors",
		}, []string{"level"}),
	}
}
