package output

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Progress tracks and displays progress on a single terminal line. Other
// output meant for the same terminal goes through Println so the two never
// interleave, even when it targets a different stream.
type Progress struct {
	w         io.Writer
	label     string
	total     int
	completed atomic.Int64
	hidden    atomic.Int64
	errors    atomic.Int64
	paused    atomic.Bool
	start     time.Time
	done      chan struct{}
	stopped   chan struct{}
	stopOnce  sync.Once
	quiet     bool

	mu      sync.Mutex // guards writes to w
	active  bool
	started bool
}

// NewProgress creates a progress tracker. Call Start to begin display
// updates. A quiet Progress never draws but still counts.
func NewProgress(w io.Writer, label string, total int, quiet bool) *Progress {
	return &Progress{
		w:       w,
		label:   label,
		total:   total,
		start:   time.Now(),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		quiet:   quiet,
	}
}

// Start begins periodically redrawing the progress line.
func (p *Progress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	if p.quiet {
		close(p.stopped)
		return
	}
	p.active = true
	go func() {
		defer close(p.stopped)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.Redraw()
			case <-p.done:
				p.mu.Lock()
				p.draw()
				fmt.Fprint(p.w, "\n")
				p.active = false
				p.mu.Unlock()
				return
			}
		}
	}()
}

// Increment records a completed item.
func (p *Progress) Increment() {
	p.completed.Add(1)
}

// IncrementHidden records a result hidden by a display filter.
func (p *Progress) IncrementHidden() {
	p.hidden.Add(1)
}

// IncrementErrors records a failed item.
func (p *Progress) IncrementErrors() {
	p.errors.Add(1)
}

// Completed returns the number of completed items.
func (p *Progress) Completed() int64 {
	return p.completed.Load()
}

// SetPaused marks the display as paused.
func (p *Progress) SetPaused(paused bool) {
	p.paused.Store(paused)
	p.Redraw()
}

// Stop ends the progress display and waits for the final redraw. It is safe
// to call more than once.
func (p *Progress) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
	})
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if started {
		<-p.stopped
	}
}

// Println prints a line to w above the progress line. A nil w means the
// progress writer itself.
func (p *Progress) Println(w io.Writer, line string) {
	if w == nil {
		w = p.w
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		fmt.Fprint(p.w, "\r\033[K")
	}
	fmt.Fprintln(w, line)
	if p.active {
		p.draw()
	}
}

// Redraw repaints the progress line.
func (p *Progress) Redraw() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		p.draw()
	}
}

// draw writes the progress line. Caller holds p.mu.
func (p *Progress) draw() {
	completed := p.completed.Load()
	elapsed := time.Since(p.start).Seconds()
	rate := float64(0)
	if elapsed > 0 {
		rate = float64(completed) / elapsed
	}

	pct := float64(0)
	if p.total > 0 {
		pct = float64(completed) / float64(p.total) * 100
	}

	eta := ""
	switch {
	case p.paused.Load():
		eta = "PAUSED"
	case rate > 0 && completed < int64(p.total):
		remaining := float64(int64(p.total)-completed) / rate
		eta = fmt.Sprintf("ETA: %s", time.Duration(remaining*float64(time.Second)).Round(time.Second))
	}

	if p.total <= 0 {
		// Unknown total: exhaustive generation.
		fmt.Fprintf(p.w, "\r\033[K%s %d | %.0f/s %s", p.label, completed, rate, eta)
		return
	}
	fmt.Fprintf(p.w, "\r\033[K%s [%3.0f%%] %d/%d | %.0f/s | Hidden: %d | Errors: %d | %s",
		p.label, pct, completed, p.total, rate,
		p.hidden.Load(), p.errors.Load(), eta)
}
