package scanner

import (
	"slices"
	"sync"
)

// RunLog accumulates probe results keyed by index. Probes complete in any
// order; Record is safe for concurrent use.
type RunLog struct {
	mu      sync.Mutex
	records map[int]ProbeResult
}

// NewRunLog creates an empty log sized for n probes.
func NewRunLog(n int) *RunLog {
	return &RunLog{records: make(map[int]ProbeResult, n)}
}

// Record stores r under r.Index.
func (l *RunLog) Record(r ProbeResult) {
	l.mu.Lock()
	l.records[r.Index] = r
	l.mu.Unlock()
}

// Len returns the number of records.
func (l *RunLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Results returns a snapshot of all records sorted by index.
func (l *RunLog) Results() []ProbeResult {
	l.mu.Lock()
	out := make([]ProbeResult, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, r)
	}
	l.mu.Unlock()
	slices.SortFunc(out, func(a, b ProbeResult) int { return a.Index - b.Index })
	return out
}
