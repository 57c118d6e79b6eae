package scanner

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/maxvaer/rexprobe/internal/log"
)

const (
	// backoffStart is the pace adopted on the first throttle signal when no
	// interval was configured.
	backoffStart = 500 * time.Millisecond
	// backoffMax is the slowest pace adaptive throttling will fall to.
	backoffMax = 30 * time.Second
	// errorThreshold transport errors in a row count as a throttle signal.
	errorThreshold = 3
)

// Throttler paces probe dispatch. With an interval of zero and adaptive mode
// off it never blocks. In adaptive mode 429 and 503 responses halve the
// rate; healthy responses double it back toward the configured pace.
type Throttler struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	base        rate.Limit
	adaptive    bool
	consecutive int
	logger      *logrus.Logger
}

// NewThrottler creates a Throttler that allows one probe per interval.
func NewThrottler(interval time.Duration, adaptive bool, logger *logrus.Logger) *Throttler {
	base := rate.Inf
	if interval > 0 {
		base = rate.Every(interval)
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Throttler{
		limiter:  rate.NewLimiter(base, 1),
		base:     base,
		adaptive: adaptive,
		logger:   logger,
	}
}

// Wait blocks until the next probe may start.
func (t *Throttler) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.limiter.Wait(ctx)
}

// Limit returns the current pace in probes per second.
func (t *Throttler) Limit() rate.Limit {
	return t.limiter.Limit()
}

// Observe feeds a finished probe into adaptive throttling.
func (t *Throttler) Observe(r ProbeResult) {
	if t == nil || !t.adaptive {
		return
	}
	switch {
	case r.StatusCode == http.StatusTooManyRequests || r.StatusCode == http.StatusServiceUnavailable:
		t.RecordStatus(r.StatusCode)
	case r.Outcome == OutcomeTransportError:
		t.RecordError()
	default:
		t.RecordStatus(r.StatusCode)
	}
}

// RecordStatus adjusts the pace for a response status code.
func (t *Throttler) RecordStatus(statusCode int) {
	if !t.adaptive {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if statusCode == http.StatusTooManyRequests || statusCode == http.StatusServiceUnavailable {
		t.consecutive++
		t.slowDown(logrus.Fields{"status": statusCode})
		return
	}
	if t.consecutive > 0 {
		t.consecutive = 0
		t.speedUp()
	}
}

// RecordError counts a transport error. Several in a row are treated like
// a throttle response.
func (t *Throttler) RecordError() {
	if !t.adaptive {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.consecutive++
	if t.consecutive >= errorThreshold {
		t.slowDown(logrus.Fields{"errors": t.consecutive})
	}
}

// slowDown halves the rate. Caller holds t.mu.
func (t *Throttler) slowDown(fields logrus.Fields) {
	cur := t.limiter.Limit()
	next := cur / 2
	if cur == rate.Inf {
		next = rate.Every(backoffStart)
	}
	if floor := rate.Every(backoffMax); next < floor {
		next = floor
	}
	if next == cur {
		return
	}
	t.limiter.SetLimit(next)
	t.logger.WithFields(fields).Warnf("rate limited, backing off to %s/probe", pace(next))
}

// speedUp doubles the rate, never beyond base. Caller holds t.mu.
func (t *Throttler) speedUp() {
	cur := t.limiter.Limit()
	if cur == t.base {
		return
	}
	next := cur * 2
	if t.base != rate.Inf && next >= t.base {
		next = t.base
	}
	if t.base == rate.Inf && next > rate.Every(backoffStart) {
		next = rate.Inf
	}
	t.limiter.SetLimit(next)
	t.logger.Debugf("recovering, pace now %s/probe", pace(next))
}

func pace(l rate.Limit) time.Duration {
	if l == rate.Inf || l <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(l)).Round(time.Millisecond)
}
