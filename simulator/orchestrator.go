package simulator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultCompletionTimeout = 2 * time.Minute

const (
	logMsgPreflightFailed   = "connectivity preflight failed, skipping worker execution"
	logMsgSimultaneousStart = "all workers ready, releasing start barrier"
	logMsgCompletionTimeout = "completion timeout expired, summarizing partial results"
	logMsgRunCompleted      = "run completed"

	logAttrRunID     = "run_id"
	logAttrStrategy  = "strategy"
	logAttrSamples   = "samples"
	logAttrError     = "error"
	logAttrOkCount   = "ok"
	logAttrFailCount = "fail"

	metricRunDuration = "simulator.run.duration"
	metricSamples     = "simulator.run.samples"
	labelStrategy     = "strategy"
	labelOutcome      = "outcome"
)

// Summary is the per-strategy result of one full run.
type Summary struct {
	RunID      string  `json:"run_id"`
	Strategy   string  `json:"strategy"`
	Samples    int     `json:"samples"`
	OkCount    int64   `json:"ok_count"`
	FailCount  int64   `json:"fail_count"`
	SuccessPct float64 `json:"success_pct"`
	AvgRetries float64 `json:"avg_retries"`
	ElapsedMs  int64   `json:"elapsed_ms"`
	TimedOut   bool    `json:"timed_out"`
	P50Ms      int64   `json:"p50_ms"`
	P95Ms      int64   `json:"p95_ms"`
	P99Ms      int64   `json:"p99_ms"`
	MaxMs      int64   `json:"max_ms"`
}

// Orchestrator drives one full run for one connection strategy: it sizes the
// barrier and the worker batch to the sample count, performs a connectivity
// preflight, releases all workers simultaneously and summarizes the outcome.
type Orchestrator struct {
	strategy          ConnectionStrategy
	runLog            *RunLog
	samples           int
	maxRetries        int
	query             string
	completionTimeout time.Duration
	logger            Logger
	metricsCollector  MetricsCollector
}

// NewOrchestrator creates an Orchestrator with optional configuration.
// The connection strategy and the run log are shared collaborators owned by
// the caller; the pool behind a pooled strategy is torn down by the caller
// via ConnectionStrategy.Close after the run.
func NewOrchestrator(
	strategy ConnectionStrategy,
	runLog *RunLog,
	samples int,
	maxRetries int,
	query string,
	options ...Option,
) (*Orchestrator, error) {
	if strategy == nil {
		return nil, ErrNilStrategy
	}
	if runLog == nil {
		return nil, ErrNilRunLog
	}
	if samples < 0 {
		return nil, ErrInvalidSampleCount
	}
	if maxRetries < 0 {
		return nil, ErrInvalidRetryLimit
	}

	o := &Orchestrator{
		strategy:          strategy,
		runLog:            runLog,
		samples:           samples,
		maxRetries:        maxRetries,
		query:             query,
		completionTimeout: defaultCompletionTimeout,
	}

	for _, option := range options {
		if err := option(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// Run executes the full batch and returns its summary. A preflight failure
// aborts the run before any worker executes and is returned as an error
// wrapping ErrPreflightFailed. A completion timeout is not an error: the
// summary is built from whatever has been recorded by then, stragglers'
// contributions are lost by design.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	runID := uuid.New().String()

	if err := o.preflight(ctx); err != nil {
		o.runLog.Log(CategorySystem,
			logAttrRunID, runID,
			logAttrStrategy, o.strategy.Name(),
			logAttrError, err.Error(),
		)
		if o.logger != nil {
			o.logger.Error(logMsgPreflightFailed, logAttrStrategy, o.strategy.Name(), logAttrError, err.Error())
		}

		return Summary{}, err
	}

	metrics := NewMetrics()
	barrier := NewStartBarrier(o.samples)

	var wg sync.WaitGroup
	startedAt := time.Now()

	for id := 1; id <= o.samples; id++ {
		w := &worker{
			id:         id,
			query:      o.query,
			maxRetries: o.maxRetries,
			strategy:   o.strategy,
			barrier:    barrier,
			metrics:    metrics,
			runLog:     o.runLog,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
	}

	if err := barrier.AwaitAllReady(ctx); err != nil {
		barrier.Release() // unblock workers so they observe the cancellation
		return Summary{}, err
	}

	o.runLog.Log(CategorySystem,
		logAttrRunID, runID,
		logAttrStrategy, o.strategy.Name(),
		logAttrSamples, o.samples,
		"msg", logMsgSimultaneousStart,
	)

	barrier.Release()

	timedOut := o.awaitCompletion(ctx, &wg)
	elapsed := time.Since(startedAt)

	if timedOut && o.logger != nil {
		o.logger.Error(logMsgCompletionTimeout, logAttrStrategy, o.strategy.Name())
	}

	summary := o.buildSummary(runID, metrics.Snapshot(), elapsed, timedOut)

	o.runLog.Log(CategorySystem,
		logAttrRunID, runID,
		logAttrStrategy, summary.Strategy,
		logAttrOkCount, summary.OkCount,
		logAttrFailCount, summary.FailCount,
		logAttrElapsedMs, summary.ElapsedMs,
		"msg", logMsgRunCompleted,
	)
	if o.logger != nil {
		o.logger.Info(logMsgRunCompleted,
			logAttrRunID, runID,
			logAttrStrategy, summary.Strategy,
			logAttrOkCount, summary.OkCount,
			logAttrFailCount, summary.FailCount,
		)
	}

	o.collectRunMetrics(summary, elapsed)

	return summary, nil
}

// preflight verifies backend connectivity with a single acquire/release pair
// before any worker runs.
func (o *Orchestrator) preflight(ctx context.Context) error {
	conn, err := o.strategy.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPreflightFailed, err)
	}
	o.strategy.Release(ctx, conn)

	return nil
}

// awaitCompletion waits for all workers within the completion timeout.
// Workers past the barrier are allowed to run on; a true return means the
// summary will only cover what was recorded by the deadline.
func (o *Orchestrator) awaitCompletion(ctx context.Context, wg *sync.WaitGroup) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(o.completionTimeout)
	defer timer.Stop()

	select {
	case <-done:
		return false
	case <-timer.C:
		return true
	case <-ctx.Done():
		return true
	}
}

func (o *Orchestrator) buildSummary(runID string, snap MetricsSnapshot, elapsed time.Duration, timedOut bool) Summary {
	summary := Summary{
		RunID:     runID,
		Strategy:  o.strategy.Name(),
		Samples:   o.samples,
		OkCount:   snap.OkCount,
		FailCount: snap.FailCount,
		ElapsedMs: elapsed.Milliseconds(),
		TimedOut:  timedOut,
		P50Ms:     snap.P50Ms,
		P95Ms:     snap.P95Ms,
		P99Ms:     snap.P99Ms,
		MaxMs:     snap.MaxMs,
	}

	reported := snap.OkCount + snap.FailCount
	if reported > 0 {
		summary.SuccessPct = float64(snap.OkCount) / float64(reported) * 100
		summary.AvgRetries = float64(snap.RetryCount) / float64(reported)
	}

	return summary
}

func (o *Orchestrator) collectRunMetrics(summary Summary, elapsed time.Duration) {
	if o.metricsCollector == nil {
		return
	}

	o.metricsCollector.RecordDuration(metricRunDuration, elapsed,
		map[string]string{labelStrategy: summary.Strategy})
	o.metricsCollector.RecordValue(metricSamples, float64(summary.OkCount),
		map[string]string{labelStrategy: summary.Strategy, labelOutcome: outcomeSuccess})
	o.metricsCollector.RecordValue(metricSamples, float64(summary.FailCount),
		map[string]string{labelStrategy: summary.Strategy, labelOutcome: outcomeFailure})
}
