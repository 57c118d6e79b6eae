package scanner

import (
	"context"
	"sync"
	"time"
)

// Pauser is a cooperative pause gate consulted by the Scheduler before each
// dispatch. Probes already in flight are not interrupted.
type Pauser struct {
	mu          sync.Mutex
	resume      chan struct{} // non-nil while paused, closed on resume
	pausedSince time.Time
	totalPaused time.Duration
}

// NewPauser creates a Pauser in the running state.
func NewPauser() *Pauser {
	return &Pauser{}
}

// Wait blocks while paused. It returns ctx.Err() if ctx is cancelled first.
func (p *Pauser) Wait(ctx context.Context) error {
	p.mu.Lock()
	ch := p.resume
	p.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Toggle flips between paused and running and returns true when the new
// state is paused.
func (p *Pauser) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resume != nil {
		p.totalPaused += time.Since(p.pausedSince)
		close(p.resume)
		p.resume = nil
		return false
	}
	p.resume = make(chan struct{})
	p.pausedSince = time.Now()
	return true
}

// PausedDuration returns the total time spent paused, including an ongoing
// pause. A nil Pauser was never paused.
func (p *Pauser) PausedDuration() time.Duration {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.totalPaused
	if p.resume != nil {
		d += time.Since(p.pausedSince)
	}
	return d
}
