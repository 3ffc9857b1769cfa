package doubles

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/poolsim/pool-simulator-go/simulator"
)

// StrategyStub is a scripted ConnectionStrategy for testing the worker retry
// loop and the orchestrator without a live backend. Acquire behavior is
// programmable per call; every acquire is timestamped so tests can check the
// start-barrier property against an observed release time.
type StrategyStub struct {
	StrategyName string

	// AcquireScript decides the outcome of the n-th acquire (1-based).
	// A nil script means every acquire succeeds.
	AcquireScript func(call int) error

	// ExecErr is returned by every connection's Exec when set.
	ExecErr error

	// ExecDelay stretches every Exec to simulate slow operations.
	ExecDelay time.Duration

	mu           sync.Mutex
	acquireCalls int
	releaseCalls int
	closeCalls   int
	acquireTimes []time.Time
}

// connectionStub is the Connection handed out by a StrategyStub.
type connectionStub struct {
	execErr   error
	execDelay time.Duration
}

func (c *connectionStub) Exec(ctx context.Context, _ string) error {
	if c.execDelay > 0 {
		select {
		case <-time.After(c.execDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return c.execErr
}

// Name implements the ConnectionStrategy interface.
func (s *StrategyStub) Name() string {
	if s.StrategyName == "" {
		return "stub"
	}

	return s.StrategyName
}

// Acquire implements the ConnectionStrategy interface, consulting the
// acquire script and wrapping scripted failures like a real strategy would.
func (s *StrategyStub) Acquire(_ context.Context) (simulator.Connection, error) {
	s.mu.Lock()
	s.acquireCalls++
	call := s.acquireCalls
	s.acquireTimes = append(s.acquireTimes, time.Now())
	script := s.AcquireScript
	s.mu.Unlock()

	if script != nil {
		if err := script(call); err != nil {
			return nil, fmt.Errorf("%w: %v", simulator.ErrAcquireFailed, err)
		}
	}

	return &connectionStub{execErr: s.ExecErr, execDelay: s.ExecDelay}, nil
}

// Release implements the ConnectionStrategy interface.
func (s *StrategyStub) Release(_ context.Context, _ simulator.Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseCalls++
}

// Close implements the ConnectionStrategy interface.
func (s *StrategyStub) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++

	return nil
}

// AcquireCalls returns how often Acquire was called.
func (s *StrategyStub) AcquireCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.acquireCalls
}

// ReleaseCalls returns how often Release was called.
func (s *StrategyStub) ReleaseCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.releaseCalls
}

// CloseCalls returns how often Close was called.
func (s *StrategyStub) CloseCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closeCalls
}

// AcquireTimes returns a copy of the timestamps of all acquires.
func (s *StrategyStub) AcquireTimes() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]time.Time(nil), s.acquireTimes...)
}

// FailFirstAcquires returns an acquire script failing the first n calls.
func FailFirstAcquires(n int) func(call int) error {
	return func(call int) error {
		if call <= n {
			return fmt.Errorf("scripted acquire failure %d", call)
		}

		return nil
	}
}

// FailAllAcquires returns an acquire script failing every call.
func FailAllAcquires() func(call int) error {
	return func(call int) error {
		return fmt.Errorf("scripted acquire failure %d", call)
	}
}

// Ensure StrategyStub implements simulator.ConnectionStrategy.
var _ simulator.ConnectionStrategy = (*StrategyStub)(nil)
