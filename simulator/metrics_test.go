package simulator_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/poolsim/pool-simulator-go/simulator"
)

func Test_Metrics_Record_ExactSumsUnderConcurrency(t *testing.T) {
	// arrange
	const successes = 300
	const failures = 200
	metrics := simulator.NewMetrics()

	var wg sync.WaitGroup

	// act
	for i := 0; i < successes; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			metrics.Record(simulator.WorkerResult{ID: id, Success: true, RetriesUsed: 0, Elapsed: 5 * time.Millisecond})
		}(i + 1)
	}
	for i := 0; i < failures; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			metrics.Record(simulator.WorkerResult{ID: id, Success: false, RetriesUsed: 2, Elapsed: 7 * time.Millisecond})
		}(successes + i + 1)
	}
	wg.Wait()

	// assert
	snapshot := metrics.Snapshot()
	assert.Equal(t, int64(successes), snapshot.OkCount)
	assert.Equal(t, int64(failures), snapshot.FailCount)
	assert.Equal(t, int64(failures*2), snapshot.RetryCount)
	assert.GreaterOrEqual(t, snapshot.MaxMs, int64(5))
}

func Test_Metrics_Snapshot_EmptyAggregator(t *testing.T) {
	// arrange
	metrics := simulator.NewMetrics()

	// act
	snapshot := metrics.Snapshot()

	// assert
	assert.Equal(t, int64(0), snapshot.OkCount)
	assert.Equal(t, int64(0), snapshot.FailCount)
	assert.Equal(t, int64(0), snapshot.RetryCount)
}

func Test_Metrics_Record_SubMillisecondElapsedIsTracked(t *testing.T) {
	// arrange
	metrics := simulator.NewMetrics()

	// act
	metrics.Record(simulator.WorkerResult{ID: 1, Success: true, Elapsed: 100 * time.Microsecond})

	// assert: clamped into the histogram's lowest bucket, never dropped
	snapshot := metrics.Snapshot()
	assert.Equal(t, int64(1), snapshot.OkCount)
	assert.GreaterOrEqual(t, snapshot.MaxMs, int64(1))
}
