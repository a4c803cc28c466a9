package launchsync

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/viant/launchsync/launch"
)

// Load outcomes recorded by Metrics.
const (
	OutcomeSuccess   = "success"
	OutcomeNoop      = "noop"
	OutcomeTransient = "transient_error"
	OutcomeMapping   = "mapping_error"
	OutcomeStore     = "store_error"
)

// Metrics provides Prometheus metrics for synchronization steps.
// All methods are nil-safe: calls on a nil *Metrics are no-ops.
type Metrics struct {
	// loadsTotal counts loads by partition, effective direction and outcome.
	loadsTotal *prometheus.CounterVec

	// loadDuration observes the wall time of a load including the fetch.
	loadDuration *prometheus.HistogramVec

	// rowsWritten counts launches written by committed loads.
	rowsWritten *prometheus.CounterVec

	// sweepsTotal counts partitions wiped by the staleness sweep.
	sweepsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the coordinator metrics with reg. If reg
// is nil, metrics are created but not registered. Existing collectors are
// reused when the same registry is handed to several coordinators.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launchsync",
			Subsystem: "sync",
			Name:      "loads_total",
			Help:      "Total number of loads by partition, direction and outcome",
		}, []string{"partition", "direction", "outcome"}),
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "launchsync",
			Subsystem: "sync",
			Name:      "load_duration_seconds",
			Help:      "Duration of loads including the remote fetch",
			Buckets:   prometheus.DefBuckets,
		}, []string{"partition", "direction"}),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launchsync",
			Subsystem: "sync",
			Name:      "rows_written_total",
			Help:      "Total number of launches written by committed loads",
		}, []string{"partition"}),
		sweepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launchsync",
			Subsystem: "sync",
			Name:      "sweeps_total",
			Help:      "Total number of partitions wiped by the staleness sweep",
		}, []string{"partition"}),
	}

	if reg != nil {
		m.loadsTotal = registerOrReuse(reg, m.loadsTotal).(*prometheus.CounterVec)
		m.loadDuration = registerOrReuse(reg, m.loadDuration).(*prometheus.HistogramVec)
		m.rowsWritten = registerOrReuse(reg, m.rowsWritten).(*prometheus.CounterVec)
		m.sweepsTotal = registerOrReuse(reg, m.sweepsTotal).(*prometheus.CounterVec)
	}
	return m
}

// ObserveLoad records one finished load.
func (m *Metrics) ObserveLoad(p launch.Partition, d Direction, outcome string, rows int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.loadsTotal.WithLabelValues(p.String(), d.String(), outcome).Inc()
	m.loadDuration.WithLabelValues(p.String(), d.String()).Observe(elapsed.Seconds())
	if rows > 0 {
		m.rowsWritten.WithLabelValues(p.String()).Add(float64(rows))
	}
}

// RecordSweep records a partition wiped by the sweep.
func (m *Metrics) RecordSweep(p launch.Partition) {
	if m == nil {
		return
	}
	m.sweepsTotal.WithLabelValues(p.String()).Inc()
}

func registerOrReuse(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}
