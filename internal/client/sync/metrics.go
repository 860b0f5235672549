package sync

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics счётчики движка синхронизации на собственном registry,
// чтобы несколько движков в одном процессе (тесты) не конфликтовали.
type Metrics struct {
	registry     *prometheus.Registry
	cycles       *prometheus.CounterVec
	pushed       prometheus.Counter
	failed       prometheus.Counter
	applied      prometheus.Counter
	skipped      prometheus.Counter
	rateLimited  prometheus.Counter
	breakerTrips prometheus.Counter
	bootstraps   prometheus.Counter
	pending      prometheus.Gauge
	duration     prometheus.Histogram
}

// NewMetrics creates and registers the engine metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendysync_sync_cycles_total",
			Help: "Sync cycles by outcome",
		}, []string{"outcome"}),
		pushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendysync_mutations_pushed_total",
			Help: "Mutations accepted by the server",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendysync_mutations_failed_total",
			Help: "Mutation send attempts that failed and stayed queued",
		}),
		applied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendysync_changes_applied_total",
			Help: "Changefeed entries applied locally",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendysync_changes_skipped_total",
			Help: "Changefeed entries skipped",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendysync_rate_limited_total",
			Help: "Responses with HTTP 429",
		}),
		breakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendysync_breaker_trips_total",
			Help: "Circuit breaker trips",
		}),
		bootstraps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendysync_bootstraps_total",
			Help: "Completed full resyncs",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trendysync_pending_mutations",
			Help: "Queued local mutations",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trendysync_sync_duration_seconds",
			Help:    "Sync cycle duration",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}

	m.registry.MustRegister(
		m.cycles,
		m.pushed,
		m.failed,
		m.applied,
		m.skipped,
		m.rateLimited,
		m.breakerTrips,
		m.bootstraps,
		m.pending,
		m.duration,
	)
	return m
}

// Registry returns the registry holding the engine metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes metrics in text exposition format for node_exporter
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func (m *Metrics) observeCycle(res *Result) {
	m.cycles.WithLabelValues(string(res.Outcome)).Inc()
	m.pushed.Add(float64(res.Pushed))
	m.failed.Add(float64(res.Failed))
	m.applied.Add(float64(res.Applied))
	m.skipped.Add(float64(res.Skipped))
	m.rateLimited.Add(float64(res.RateLimited))
	if res.BreakerTripped {
		m.breakerTrips.Inc()
	}
	if res.Bootstrapped && res.BootstrapErr == nil {
		m.bootstraps.Inc()
	}
	m.duration.Observe(res.Duration().Seconds())
}
