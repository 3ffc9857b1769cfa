package simulator_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolsim/pool-simulator-go/simulator"
	"github.com/poolsim/pool-simulator-go/testutil/doubles"
)

func newOrchestrator(
	t *testing.T,
	strategy simulator.ConnectionStrategy,
	samples int,
	maxRetries int,
	options ...simulator.Option,
) (*simulator.Orchestrator, string) {
	t.Helper()

	runLog, path := newTestRunLog(t)
	t.Cleanup(func() { _ = runLog.Close() })

	orchestrator, err := simulator.NewOrchestrator(strategy, runLog, samples, maxRetries, "SELECT 1", options...)
	require.NoError(t, err)

	return orchestrator, path
}

func Test_Orchestrator_AllWorkersSucceed(t *testing.T) {
	// arrange
	const samples = 25
	stub := &doubles.StrategyStub{StrategyName: "pooled"}
	orchestrator, _ := newOrchestrator(t, stub, samples, 2)

	// act
	summary, err := orchestrator.Run(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(samples), summary.OkCount)
	assert.Equal(t, int64(0), summary.FailCount)
	assert.InDelta(t, 100.0, summary.SuccessPct, 0.001)
	assert.InDelta(t, 0.0, summary.AvgRetries, 0.001)
	assert.False(t, summary.TimedOut)
	assert.NotEmpty(t, summary.RunID)

	// one preflight acquire plus exactly one per worker, all released again
	assert.Equal(t, samples+1, stub.AcquireCalls())
	assert.Equal(t, samples+1, stub.ReleaseCalls())
}

func Test_Orchestrator_AllWorkersFail_RetriesExhausted(t *testing.T) {
	// arrange
	const samples = 10
	const maxRetries = 3
	stub := &doubles.StrategyStub{
		StrategyName: "raw",
		AcquireScript: func(call int) error {
			if call == 1 {
				return nil // keep the preflight green
			}
			return doubles.FailAllAcquires()(call)
		},
	}
	orchestrator, _ := newOrchestrator(t, stub, samples, maxRetries)

	// act
	summary, err := orchestrator.Run(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.OkCount)
	assert.Equal(t, int64(samples), summary.FailCount)
	assert.InDelta(t, 0.0, summary.SuccessPct, 0.001)
	assert.InDelta(t, float64(maxRetries), summary.AvgRetries, 0.001)

	// preflight + every worker burns all of its attempts
	assert.Equal(t, 1+samples*(maxRetries+1), stub.AcquireCalls())
}

func Test_Orchestrator_FailOnceThenSucceed(t *testing.T) {
	// arrange: acquire call 1 is the preflight, call 2 the worker's first
	// attempt, call 3 its retry
	stub := &doubles.StrategyStub{
		StrategyName: "raw",
		AcquireScript: func(call int) error {
			if call == 2 {
				return doubles.FailAllAcquires()(call)
			}
			return nil
		},
	}
	orchestrator, _ := newOrchestrator(t, stub, 1, 1)

	// act
	summary, err := orchestrator.Run(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.OkCount)
	assert.Equal(t, int64(0), summary.FailCount)
	assert.InDelta(t, 1.0, summary.AvgRetries, 0.001)
	assert.Equal(t, 3, stub.AcquireCalls())
}

func Test_Orchestrator_OperationFailures_AreRetriedLikeAcquireFailures(t *testing.T) {
	// arrange
	const samples = 5
	const maxRetries = 1
	stub := &doubles.StrategyStub{StrategyName: "pooled", ExecErr: assert.AnError}
	orchestrator, _ := newOrchestrator(t, stub, samples, maxRetries)

	// act
	summary, err := orchestrator.Run(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(samples), summary.FailCount)
	assert.InDelta(t, float64(maxRetries), summary.AvgRetries, 0.001)

	// every acquired connection was released, attempts included
	assert.Equal(t, stub.AcquireCalls(), stub.ReleaseCalls())
}

func Test_Orchestrator_ZeroSamples_EmptySummaryWithoutError(t *testing.T) {
	// arrange
	stub := &doubles.StrategyStub{StrategyName: "raw"}
	orchestrator, path := newOrchestrator(t, stub, 0, 1)

	// act
	summary, err := orchestrator.Run(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Samples)
	assert.Equal(t, int64(0), summary.OkCount)
	assert.Equal(t, int64(0), summary.FailCount)
	assert.InDelta(t, 0.0, summary.SuccessPct, 0.001)
	assert.False(t, summary.TimedOut)

	// only the preflight touched the strategy
	assert.Equal(t, 1, stub.AcquireCalls())

	// the system lines are still written
	lines := readLogLines(t, path)
	assert.Len(t, lines, 2)
}

func Test_Orchestrator_PreflightFailure_AbortsBeforeWorkers(t *testing.T) {
	// arrange
	stub := &doubles.StrategyStub{StrategyName: "raw", AcquireScript: doubles.FailAllAcquires()}
	spy := doubles.NewLoggerSpy()
	orchestrator, path := newOrchestrator(t, stub, 10, 1, simulator.WithLogger(spy))

	// act
	summary, err := orchestrator.Run(context.Background())

	// assert
	require.Error(t, err)
	assert.ErrorIs(t, err, simulator.ErrPreflightFailed)
	assert.Equal(t, simulator.Summary{}, summary)
	assert.Equal(t, 1, stub.AcquireCalls(), "no worker may run after a failed preflight")

	// the abort is visible to the operator and in the run log
	assert.True(t, spy.HasLog("error", "connectivity preflight failed, skipping worker execution"))
	lines := readLogLines(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "SYSTEM")
}

func Test_Orchestrator_CompletionTimeout_SummarizesPartialResults(t *testing.T) {
	// arrange: operations far slower than the completion timeout
	const samples = 4
	stub := &doubles.StrategyStub{StrategyName: "pooled", ExecDelay: 300 * time.Millisecond}
	orchestrator, _ := newOrchestrator(t, stub, samples, 0,
		simulator.WithCompletionTimeout(30*time.Millisecond))

	// act
	summary, err := orchestrator.Run(context.Background())

	// assert
	require.NoError(t, err)
	assert.True(t, summary.TimedOut)
	assert.Less(t, summary.OkCount+summary.FailCount, int64(samples),
		"stragglers must not be awaited past the timeout")

	// let the stragglers drain before the test's run log is closed
	time.Sleep(400 * time.Millisecond)
}

func Test_Orchestrator_NoTimedWorkBeforeRelease(t *testing.T) {
	// arrange
	const samples = 20
	stub := &doubles.StrategyStub{StrategyName: "raw"}
	orchestrator, path := newOrchestrator(t, stub, samples, 0)

	// act
	summary, err := orchestrator.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(samples), summary.OkCount)

	// assert: every worker acquire happened at or after the moment the
	// release was announced in the run log
	releasedAt := releaseTimestampFromLog(t, path)
	acquireTimes := stub.AcquireTimes()
	require.Len(t, acquireTimes, samples+1)
	for _, acquiredAt := range acquireTimes[1:] { // index 0 is the preflight
		assert.False(t, acquiredAt.Before(releasedAt),
			"worker attempt started before the barrier release")
	}
}

func releaseTimestampFromLog(t *testing.T, path string) time.Time {
	t.Helper()

	for _, line := range readLogLines(t, path) {
		if !strings.Contains(line, "releasing start barrier") {
			continue
		}

		ts, err := time.ParseInLocation("2006-01-02 15:04:05.000", line[:23], time.Local)
		require.NoError(t, err)

		return ts
	}

	t.Fatal("no release line found in run log")
	return time.Time{}
}

func Test_NewOrchestrator_Validation(t *testing.T) {
	runLog, _ := newTestRunLog(t)
	t.Cleanup(func() { _ = runLog.Close() })
	stub := &doubles.StrategyStub{}

	tests := []struct {
		name        string
		build       func() (*simulator.Orchestrator, error)
		expectedErr error
	}{
		{
			name: "nil_strategy",
			build: func() (*simulator.Orchestrator, error) {
				return simulator.NewOrchestrator(nil, runLog, 1, 0, "SELECT 1")
			},
			expectedErr: simulator.ErrNilStrategy,
		},
		{
			name: "nil_run_log",
			build: func() (*simulator.Orchestrator, error) {
				return simulator.NewOrchestrator(stub, nil, 1, 0, "SELECT 1")
			},
			expectedErr: simulator.ErrNilRunLog,
		},
		{
			name: "negative_samples",
			build: func() (*simulator.Orchestrator, error) {
				return simulator.NewOrchestrator(stub, runLog, -1, 0, "SELECT 1")
			},
			expectedErr: simulator.ErrInvalidSampleCount,
		},
		{
			name: "negative_retry_limit",
			build: func() (*simulator.Orchestrator, error) {
				return simulator.NewOrchestrator(stub, runLog, 1, -1, "SELECT 1")
			},
			expectedErr: simulator.ErrInvalidRetryLimit,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			orchestrator, err := tc.build()
			assert.Nil(t, orchestrator)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_Orchestrator_RunLogCoversEveryWorker(t *testing.T) {
	// arrange
	const samples = 12
	stub := &doubles.StrategyStub{StrategyName: "pooled"}
	orchestrator, path := newOrchestrator(t, stub, samples, 0)

	// act
	_, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	// assert: one line per worker plus the two system lines
	lines := readLogLines(t, path)
	require.Len(t, lines, samples+2)

	workerLines := 0
	for _, line := range lines {
		assert.Regexp(t, logTimestampPattern, line)
		if strings.Contains(line, " - pooled - ") {
			assert.Regexp(t, logLinePattern, line)
			workerLines++
		}
	}
	assert.Equal(t, samples, workerLines)
}
