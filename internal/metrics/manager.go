package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// http
	CounterRequests     *prometheus.CounterVec
	HistRequestDuration *prometheus.HistogramVec
	CounterRateLimited  prometheus.Counter

	// step pipeline
	CounterStepReadings   *prometheus.CounterVec
	CounterStepForwards   prometheus.Counter
	CounterBaselineResets *prometheus.CounterVec
	CounterSyncRuns       *prometheus.CounterVec
	CounterSyncRetries    prometheus.Counter
	CounterSyncDeferred   prometheus.Counter
	CounterDaysFlushed    prometheus.Counter
	GaugeArmedCounters    prometheus.Gauge
	HistSyncDuration      prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("weighttracker", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("weighttracker", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		CounterRateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rate_limited",
			Help:      "The total number of requests rejected by the rate limiter",
		}),
		CounterStepReadings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "step_readings",
			Help:      "The total number of step sensor readings applied",
		}, []string{"sensor"}),
		CounterStepForwards: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "step_forwards",
			Help:      "The total number of steps-today updates forwarded to listeners",
		}),
		CounterBaselineResets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "step_baseline_resets",
			Help:      "The total number of daily baseline resets",
		}, []string{"reason"}),
		CounterSyncRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "step_sync_runs",
			Help:      "The total number of per-user step sync attempts",
		}, []string{"result"}),
		CounterSyncRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "step_sync_retries",
			Help:      "The total number of step sync retries",
		}),
		CounterSyncDeferred: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "step_sync_deferred",
			Help:      "The total number of user syncs deferred to the next period",
		}),
		CounterDaysFlushed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "step_days_flushed",
			Help:      "The total number of daily step records written",
		}),
		GaugeArmedCounters: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "step_armed_counters",
			Help:      "The number of users with an active step counter",
		}),
		HistSyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "step_sync_duration_seconds",
			Help:      "Duration of a full step sync pass",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
