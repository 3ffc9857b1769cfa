package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"

	logAttrWorkerID  = "id"
	logAttrOutcome   = "outcome"
	logAttrRetries   = "retries"
	logAttrElapsedMs = "elapsed_ms"
)

// worker executes one simulated client: it waits at the start barrier, runs
// the retry loop against the connection strategy, and reports exactly one
// result to the metrics aggregator and one line to the run log.
type worker struct {
	id         int
	query      string
	maxRetries int
	strategy   ConnectionStrategy
	barrier    *StartBarrier
	metrics    *Metrics
	runLog     *RunLog
}

func (w *worker) run(ctx context.Context) {
	w.barrier.AnnounceReady()

	if err := w.barrier.AwaitRelease(ctx); err != nil {
		return // run aborted before the timed work began, nothing to report
	}

	attempts := 0
	start := time.Now()

	err := retry.Do(
		func() error {
			attempts++
			return w.attempt(ctx)
		},
		retry.Attempts(uint(w.maxRetries+1)),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)

	elapsed := time.Since(start)

	result := WorkerResult{
		ID:          w.id,
		Success:     err == nil,
		RetriesUsed: attempts - 1,
		Elapsed:     elapsed,
	}

	w.metrics.Record(result)

	outcome := outcomeSuccess
	if !result.Success {
		outcome = outcomeFailure
	}

	w.runLog.Log(w.strategy.Name(),
		logAttrWorkerID, result.ID,
		logAttrOutcome, outcome,
		logAttrRetries, result.RetriesUsed,
		logAttrElapsedMs, result.Elapsed.Milliseconds(),
	)
}

// attempt acquires a connection, executes the configured operation and
// releases the connection on every exit path.
func (w *worker) attempt(ctx context.Context) error {
	conn, err := w.strategy.Acquire(ctx)
	if err != nil {
		return err
	}
	defer w.strategy.Release(ctx, conn)

	if err := conn.Exec(ctx, w.query); err != nil {
		return fmt.Errorf("%w: %v", ErrOperationFailed, err)
	}

	return nil
}
