package sweep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingTarget struct {
	calls atomic.Int64
	err   error
}

func (c *countingTarget) SweepExpired(ctx context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestSweeper_RunSweepsAllTargets(t *testing.T) {
	a := &countingTarget{}
	b := &countingTarget{}
	s := New(5*time.Millisecond, a, b)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	if a.calls.Load() == 0 {
		t.Error("first target never swept")
	}
	if b.calls.Load() == 0 {
		t.Error("second target never swept")
	}
}

func TestSweeper_FailingTargetDoesNotStopTicking(t *testing.T) {
	failing := &countingTarget{err: errors.New("settlement failed")}
	s := New(5*time.Millisecond, failing)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	if failing.calls.Load() < 2 {
		t.Errorf("failing target swept %d times, want retries on later ticks", failing.calls.Load())
	}
}

func TestSweeper_FuncTarget(t *testing.T) {
	var calls atomic.Int64
	s := New(5*time.Millisecond, Func(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	if calls.Load() == 0 {
		t.Error("func target never swept")
	}
}

func TestSweeper_DefaultInterval(t *testing.T) {
	s := New(0)
	if s.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", s.interval, DefaultInterval)
	}
}
