package scanner

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultBudget is the number of probes allowed in flight at once.
const DefaultBudget = 5

// SchedulerConfig holds options for a Scheduler.
type SchedulerConfig struct {
	Budget    int        // max in-flight probes, DefaultBudget when <= 0
	Throttler *Throttler // nil means no pacing
	Pauser    *Pauser    // nil means no pause support

	// OnResult is called from the probing goroutine after each result is
	// recorded. It must be safe for concurrent use.
	OnResult func(ProbeResult)
}

// Scheduler dispatches probes with bounded concurrency and collects the
// results into a RunLog.
type Scheduler struct {
	prober Prober
	cfg    SchedulerConfig
}

// NewScheduler creates a Scheduler around p.
func NewScheduler(p Prober, cfg SchedulerConfig) *Scheduler {
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultBudget
	}
	return &Scheduler{prober: p, cfg: cfg}
}

// Run probes urls in order, url i getting index i+1. Dispatch blocks while
// Budget probes are in flight. Once ctx is cancelled nothing new is
// dispatched; probes cut short by the cancellation are not recorded. Run
// returns after every dispatched probe has finished.
func (s *Scheduler) Run(ctx context.Context, urls []string) *RunLog {
	runLog := NewRunLog(len(urls))

	var g errgroup.Group
	g.SetLimit(s.cfg.Budget)

	for i, u := range urls {
		if s.cfg.Pauser != nil {
			if err := s.cfg.Pauser.Wait(ctx); err != nil {
				break
			}
		}
		if err := s.cfg.Throttler.Wait(ctx); err != nil {
			break
		}
		if ctx.Err() != nil {
			break
		}

		index := i + 1
		g.Go(func() error {
			res := s.prober.Probe(ctx, index, u)
			if ctx.Err() != nil && res.Outcome == OutcomeTransportError {
				return nil
			}
			s.cfg.Throttler.Observe(res)
			runLog.Record(res)
			if s.cfg.OnResult != nil {
				s.cfg.OnResult(res)
			}
			return nil
		})
	}

	_ = g.Wait()
	return runLog
}
