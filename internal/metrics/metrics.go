// Package metrics exposes Prometheus instrumentation for the lock engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/LeJamon/goLPLockd/internal/events"
)

const namespace = "lplockd"

// Metrics holds every collector the node reports to.
type Metrics struct {
	transactions *prometheus.CounterVec
	applyLatency *prometheus.HistogramVec
	lockEvents   *prometheus.CounterVec
	feesClaimed  *prometheus.CounterVec
	publishErr   prometheus.Counter
	journalOps   *prometheus.CounterVec
	journalTime  *prometheus.HistogramVec
	gatherer     prometheus.Gatherer
}

// New registers the collectors with reg. A nil reg gets a private registry.
func New(reg prometheus.Registerer) *Metrics {
	var gatherer prometheus.Gatherer
	if reg == nil {
		registry := prometheus.NewRegistry()
		reg = registry
		gatherer = registry
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	} else {
		gatherer = prometheus.DefaultGatherer
	}

	factory := promauto.With(reg)
	return &Metrics{
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Submitted transactions by type and result.",
		}, []string{"type", "result"}),
		applyLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "apply_duration_seconds",
			Help:      "Time to apply and commit a transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"type"}),
		lockEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_events_total",
			Help:      "Committed lock events by kind.",
		}, []string{"kind"}),
		feesClaimed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_collected_total",
			Help:      "Token units paid out by fee collections.",
		}, []string{"token"}),
		publishErr: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Events that could not be published.",
		}),
		journalOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "operations_total",
			Help:      "Journal operations by name and driver.",
		}, []string{"name", "driver"}),
		journalTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "duration_seconds",
			Help:      "Journal operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"name", "driver"}),
		gatherer: gatherer,
	}
}

// WriteTextfile writes the gathered metrics to path in the text exposition
// format, for pickup by the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.gatherer)
}

// Gatherer returns the gatherer the collectors are registered with.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// ObserveTransaction records one submission.
func (m *Metrics) ObserveTransaction(txType, result string, d time.Duration) {
	m.transactions.WithLabelValues(txType, result).Inc()
	m.applyLatency.WithLabelValues(txType).Observe(d.Seconds())
}

// ObserveEvents records committed events.
func (m *Metrics) ObserveEvents(evs []events.Event) {
	for _, ev := range evs {
		m.lockEvents.WithLabelValues(string(ev.Kind)).Inc()
		if ev.Kind == events.KindFeesCollected {
			m.feesClaimed.WithLabelValues("token0").Add(float64(ev.Fee0))
			m.feesClaimed.WithLabelValues("token1").Add(float64(ev.Fee1))
		}
	}
}

// IncPublishError counts a failed publish.
func (m *Metrics) IncPublishError() {
	m.publishErr.Inc()
}

// IncrementCounter implements relationaldb.Metrics.
func (m *Metrics) IncrementCounter(name string, tags map[string]string) {
	m.journalOps.WithLabelValues(name, tags["driver"]).Inc()
}

// RecordDuration implements relationaldb.Metrics.
func (m *Metrics) RecordDuration(name string, d time.Duration, tags map[string]string) {
	m.journalTime.WithLabelValues(name, tags["driver"]).Observe(d.Seconds())
}
