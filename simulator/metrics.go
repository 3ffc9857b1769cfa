package simulator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// WorkerResult is produced exactly once per completing worker and is not
// mutated after creation.
type WorkerResult struct {
	ID          int
	Success     bool
	RetriesUsed int
	Elapsed     time.Duration
}

// MetricsSnapshot is a point-in-time view of the aggregated counters.
// Mid-run it is consistent enough for progress reporting; once all workers
// have reported it holds the authoritative final totals.
type MetricsSnapshot struct {
	OkCount    int64
	FailCount  int64
	RetryCount int64
	P50Ms      int64
	P95Ms      int64
	P99Ms      int64
	MaxMs      int64
}

// Metrics aggregates worker results with exact sums under concurrent access.
// Counters are atomics, the latency histogram is guarded by a mutex.
type Metrics struct {
	ok      atomic.Int64
	fail    atomic.Int64
	retries atomic.Int64

	mu      sync.Mutex
	elapsed *hdrhistogram.Histogram
}

// NewMetrics creates an empty aggregator. The histogram tracks per-worker
// elapsed time from 1ms up to 10 minutes at 3 significant figures.
func NewMetrics() *Metrics {
	return &Metrics{
		elapsed: hdrhistogram.New(1, int64(10*time.Minute/time.Millisecond), 3),
	}
}

// Record adds one worker result. Each worker contributes exactly one update.
func (m *Metrics) Record(result WorkerResult) {
	if result.Success {
		m.ok.Add(1)
	} else {
		m.fail.Add(1)
	}
	m.retries.Add(int64(result.RetriesUsed))

	elapsedMs := result.Elapsed.Milliseconds()
	if elapsedMs < 1 {
		elapsedMs = 1
	}

	m.mu.Lock()
	_ = m.elapsed.RecordValue(elapsedMs)
	m.mu.Unlock()
}

// Snapshot reads the current totals.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	p50 := m.elapsed.ValueAtQuantile(50)
	p95 := m.elapsed.ValueAtQuantile(95)
	p99 := m.elapsed.ValueAtQuantile(99)
	maxMs := m.elapsed.Max()
	m.mu.Unlock()

	return MetricsSnapshot{
		OkCount:    m.ok.Load(),
		FailCount:  m.fail.Load(),
		RetryCount: m.retries.Load(),
		P50Ms:      p50,
		P95Ms:      p95,
		P99Ms:      p99,
		MaxMs:      maxMs,
	}
}
