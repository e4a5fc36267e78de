// Package sweep drives the periodic settlement of expired listings and
// auctions.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

const DefaultInterval = 15 * time.Second

// Target is anything with expired state to settle.
type Target interface {
	SweepExpired(ctx context.Context) error
}

// Func adapts a plain maintenance function to a Target.
type Func func(ctx context.Context) error

func (f Func) SweepExpired(ctx context.Context) error { return f(ctx) }

type Sweeper struct {
	interval time.Duration
	targets  []Target
}

func New(interval time.Duration, targets ...Target) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{interval: interval, targets: targets}
}

// Run sweeps all targets on every tick until ctx is cancelled. Targets run
// concurrently; a failing target is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Settlement sweeper started", slog.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			slog.Info("Settlement sweeper stopped")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	for _, target := range s.targets {
		target := target
		g.Go(func() error {
			return target.SweepExpired(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("Sweep pass failed", slog.String("error", err.Error()))
	}
}
