package tracer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "accel"

// Subsystem for query metrics
const querySubsystem = "query"

// Metrics holds the Prometheus collectors updated by a Runner. Counters are
// updated once per worker block so the traversal hot path stays free of
// atomic operations.
type Metrics struct {
	// Labels: mode (nearest, any, overlap)
	QueriesTotal *prometheus.CounterVec

	// Labels: mode
	HitsTotal *prometheus.CounterVec

	NodesVisitedTotal   prometheus.Counter
	PrimitiveTestsTotal prometheus.Counter
	StackOverflowsTotal prometheus.Counter

	// Number of queries that returned partial results due to stack overflows.
	TruncatedTotal prometheus.Counter

	// Labels: mode
	BatchDurationSeconds *prometheus.HistogramVec
}

// Create and register the runner metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: querySubsystem,
			Name:      "queries_total",
			Help:      "Total traversal queries by mode",
		}, []string{"mode"}),
		HitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: querySubsystem,
			Name:      "hits_total",
			Help:      "Total primitive hits reported by traversal queries",
		}, []string{"mode"}),
		NodesVisitedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: querySubsystem,
			Name:      "nodes_visited_total",
			Help:      "Total BVH nodes visited",
		}),
		PrimitiveTestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: querySubsystem,
			Name:      "primitive_tests_total",
			Help:      "Total primitive intersection tests",
		}),
		StackOverflowsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: querySubsystem,
			Name:      "stack_overflows_total",
			Help:      "Total traversal stack overflows",
		}),
		TruncatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: querySubsystem,
			Name:      "truncated_total",
			Help:      "Total queries that returned partial results",
		}),
		BatchDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: querySubsystem,
			Name:      "batch_duration_seconds",
			Help:      "Time to process a batch of queries",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"mode"}),
	}
}

// Add the totals of a worker block.
func (m *Metrics) recordBlock(mode Mode, totals Totals) {
	if m == nil {
		return
	}

	m.QueriesTotal.WithLabelValues(mode.String()).Add(float64(totals.Queries))
	m.HitsTotal.WithLabelValues(mode.String()).Add(float64(totals.Hits))
	m.NodesVisitedTotal.Add(float64(totals.NodesVisited))
	m.PrimitiveTestsTotal.Add(float64(totals.PrimitiveTests))
	m.StackOverflowsTotal.Add(float64(totals.StackOverflows))
	m.TruncatedTotal.Add(float64(totals.Truncated))
}

func (m *Metrics) recordBatch(mode Mode, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BatchDurationSeconds.WithLabelValues(mode.String()).Observe(elapsed.Seconds())
}
