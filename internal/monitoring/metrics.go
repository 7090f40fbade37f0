package monitoring

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/farhan-ahmed1/settle/internal/aggregate"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Metrics collects fetch and aggregation metrics on its own registry.
// It implements client.FetchObserver and aggregate.Observer.
type Metrics struct {
	registry *prometheus.Registry

	fetchTotal      *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
	batchTotal      *prometheus.CounterVec
	batchSize       prometheus.Histogram
	batchWait       prometheus.Histogram
	tasksTotal      *prometheus.CounterVec
	taskDuration    prometheus.Histogram
	unreportedFails prometheus.Counter

	// Mirrors of the counters above for Snapshot
	fetches       int64
	fetchFailures int64
	batches       int64
	batchFailures int64
	tasksSettled  int64
	tasksFailed   int64

	mu               sync.Mutex
	totalTaskTime    time.Duration
	lastBatchFailure time.Time
	startTime        time.Time
}

// MetricsSnapshot provides a point-in-time view of all metrics
type MetricsSnapshot struct {
	// Fetches
	Fetches       int64
	FetchFailures int64

	// Batches
	Batches          int64
	BatchFailures    int64
	LastBatchFailure time.Time

	// Tasks
	TasksSettled    int64
	TasksFailed     int64
	AvgTaskDuration time.Duration

	// System
	Uptime time.Duration
}

// NewMetrics creates a collector whose metric names are prefixed with namespace
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "settle"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "fetch",
				Name:      "requests_total",
				Help:      "Total number of fetches by result",
			},
			[]string{"result"},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "fetch",
				Name:      "duration_seconds",
				Help:      "Duration of fetches in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
		),
		batchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aggregate",
				Name:      "batches_total",
				Help:      "Total number of aggregated batches by result",
			},
			[]string{"result"},
		),
		batchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "aggregate",
				Name:      "batch_size",
				Help:      "Number of tasks per aggregated batch",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
			},
		),
		batchWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "aggregate",
				Name:      "wait_seconds",
				Help:      "Time spent waiting for a batch to settle",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
			},
		),
		tasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aggregate",
				Name:      "tasks_total",
				Help:      "Total number of settled tasks by result",
			},
			[]string{"result"},
		),
		taskDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "aggregate",
				Name:      "task_duration_seconds",
				Help:      "Time from task start to settlement",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
			},
		),
		unreportedFails: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aggregate",
				Name:      "unreported_failures_total",
				Help:      "Failed tasks hidden behind an earlier failure in the same batch",
			},
		),
		startTime: time.Now(),
	}

	m.registry.MustRegister(
		m.fetchTotal,
		m.fetchDuration,
		m.batchTotal,
		m.batchSize,
		m.batchWait,
		m.tasksTotal,
		m.taskDuration,
		m.unreportedFails,
	)

	return m
}

// Registry exposes the underlying prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveFetch records one fetch
func (m *Metrics) ObserveFetch(_ string, duration time.Duration, err error) {
	atomic.AddInt64(&m.fetches, 1)
	m.fetchDuration.Observe(duration.Seconds())

	if err != nil {
		atomic.AddInt64(&m.fetchFailures, 1)
		m.fetchTotal.WithLabelValues(resultFailure).Inc()
		return
	}
	m.fetchTotal.WithLabelValues(resultSuccess).Inc()
}

// ObserveAggregate records one settled batch
func (m *Metrics) ObserveAggregate(r aggregate.Report) {
	atomic.AddInt64(&m.batches, 1)
	atomic.AddInt64(&m.tasksSettled, int64(r.Tasks))
	atomic.AddInt64(&m.tasksFailed, int64(r.Failed))

	m.batchSize.Observe(float64(r.Tasks))
	m.batchWait.Observe(r.Waited.Seconds())

	var total time.Duration
	for _, d := range r.TaskDurations {
		total += d
		m.taskDuration.Observe(d.Seconds())
	}

	m.tasksTotal.WithLabelValues(resultSuccess).Add(float64(r.Tasks - r.Failed))
	m.tasksTotal.WithLabelValues(resultFailure).Add(float64(r.Failed))

	m.mu.Lock()
	m.totalTaskTime += total
	m.mu.Unlock()

	if r.Ok() {
		m.batchTotal.WithLabelValues(resultSuccess).Inc()
		return
	}

	atomic.AddInt64(&m.batchFailures, 1)
	m.batchTotal.WithLabelValues(resultFailure).Inc()
	m.unreportedFails.Add(float64(r.Failed - 1))

	m.mu.Lock()
	m.lastBatchFailure = time.Now()
	m.mu.Unlock()
}

// Snapshot returns the current counters
func (m *Metrics) Snapshot() MetricsSnapshot {
	settled := atomic.LoadInt64(&m.tasksSettled)

	m.mu.Lock()
	defer m.mu.Unlock()

	var avg time.Duration
	if settled > 0 {
		avg = m.totalTaskTime / time.Duration(settled)
	}

	return MetricsSnapshot{
		Fetches:          atomic.LoadInt64(&m.fetches),
		FetchFailures:    atomic.LoadInt64(&m.fetchFailures),
		Batches:          atomic.LoadInt64(&m.batches),
		BatchFailures:    atomic.LoadInt64(&m.batchFailures),
		LastBatchFailure: m.lastBatchFailure,
		TasksSettled:     settled,
		TasksFailed:      atomic.LoadInt64(&m.tasksFailed),
		AvgTaskDuration:  avg,
		Uptime:           time.Since(m.startTime),
	}
}

// WriteText writes every metric in the Prometheus text exposition format
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
