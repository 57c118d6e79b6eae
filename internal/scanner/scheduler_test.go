package scanner

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeProber answers after a delay and tracks concurrency.
type fakeProber struct {
	delay    func(index int) time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	calls    atomic.Int32
}

func (f *fakeProber) Probe(ctx context.Context, index int, rawURL string) ProbeResult {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	var d time.Duration
	if f.delay != nil {
		d = f.delay(index)
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
		return ProbeResult{Index: index, URL: rawURL, Outcome: OutcomeTransportError, Error: ctx.Err().Error()}
	}
	return ProbeResult{Index: index, URL: rawURL, Outcome: OutcomeSuccess, StatusCode: 200}
}

func makeURLs(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/%d", i)
	}
	return urls
}

func TestSchedulerBoundsInFlight(t *testing.T) {
	t.Parallel()

	p := &fakeProber{delay: func(int) time.Duration { return 10 * time.Millisecond }}
	s := NewScheduler(p, SchedulerConfig{Budget: 3})

	runLog := s.Run(context.Background(), makeURLs(40))

	if got := p.maxSeen.Load(); got > 3 {
		t.Errorf("max in-flight = %d, budget 3", got)
	}
	if got := p.maxSeen.Load(); got < 2 {
		t.Errorf("expected concurrent probes, max in-flight = %d", got)
	}
	if runLog.Len() != 40 {
		t.Errorf("expected 40 records, got %d", runLog.Len())
	}
}

func TestSchedulerIndexStability(t *testing.T) {
	t.Parallel()

	p := &fakeProber{delay: func(int) time.Duration {
		return time.Duration(rand.IntN(5)) * time.Millisecond
	}}
	s := NewScheduler(p, SchedulerConfig{Budget: 8})

	// Duplicates keep separate indices.
	urls := append(makeURLs(25), "https://example.com/0", "https://example.com/0")
	results := s.Run(context.Background(), urls).Results()

	if len(results) != len(urls) {
		t.Fatalf("expected %d results, got %d", len(urls), len(results))
	}
	for i, r := range results {
		if r.Index != i+1 {
			t.Errorf("results[%d].Index = %d", i, r.Index)
		}
		if r.URL != urls[i] {
			t.Errorf("index %d probed %q, want %q", r.Index, r.URL, urls[i])
		}
	}
}

func TestSchedulerCancelStopsDispatch(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &fakeProber{delay: func(int) time.Duration { return 5 * time.Millisecond }}
	var seen atomic.Int32
	s := NewScheduler(p, SchedulerConfig{
		Budget: 2,
		OnResult: func(ProbeResult) {
			if seen.Add(1) == 4 {
				cancel()
			}
		},
	})

	done := make(chan *RunLog, 1)
	go func() { done <- s.Run(ctx, makeURLs(200)) }()

	select {
	case runLog := <-done:
		if n := runLog.Len(); n < 4 || n >= 200 {
			t.Errorf("expected a partial log, got %d records", n)
		}
		for _, r := range runLog.Results() {
			if r.Outcome != OutcomeSuccess {
				t.Errorf("cancelled probe recorded: %+v", r)
			}
		}
		if c := p.calls.Load(); c > 10 {
			t.Errorf("dispatch continued after cancel: %d calls", c)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSchedulerPause(t *testing.T) {
	t.Parallel()

	p := &fakeProber{}
	pauser := NewPauser()
	pauser.Toggle()
	s := NewScheduler(p, SchedulerConfig{Budget: 2, Pauser: pauser})

	done := make(chan *RunLog, 1)
	go func() { done <- s.Run(context.Background(), makeURLs(5)) }()

	time.Sleep(50 * time.Millisecond)
	if c := p.calls.Load(); c != 0 {
		t.Fatalf("%d probes dispatched while paused", c)
	}

	pauser.Toggle()
	select {
	case runLog := <-done:
		if runLog.Len() != 5 {
			t.Errorf("expected 5 records, got %d", runLog.Len())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not resume")
	}
}

func TestSchedulerInterval(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var starts []time.Time
	p := &timedProber{record: func() {
		mu.Lock()
		starts = append(starts, time.Now())
		mu.Unlock()
	}}
	s := NewScheduler(p, SchedulerConfig{
		Budget:    5,
		Throttler: NewThrottler(20*time.Millisecond, false, nil),
	})

	s.Run(context.Background(), makeURLs(4))

	mu.Lock()
	defer mu.Unlock()
	if len(starts) != 4 {
		t.Fatalf("expected 4 probes, got %d", len(starts))
	}
	if total := starts[3].Sub(starts[0]); total < 50*time.Millisecond {
		t.Errorf("4 probes at 20ms interval spanned only %s", total)
	}
}

type timedProber struct{ record func() }

func (p *timedProber) Probe(_ context.Context, index int, rawURL string) ProbeResult {
	p.record()
	return ProbeResult{Index: index, URL: rawURL, Outcome: OutcomeStatus, StatusCode: 404}
}

func TestSchedulerEmpty(t *testing.T) {
	t.Parallel()

	s := NewScheduler(&fakeProber{}, SchedulerConfig{})
	if n := s.Run(context.Background(), nil).Len(); n != 0 {
		t.Errorf("expected empty log, got %d", n)
	}
}

func TestSchedulerMixedOutcomesKeepInputPositions(t *testing.T) {
	srv := newProbeServer(t)
	fetcher := &recordingFetcher{}
	prober := newTestProber(t, false, fetcher)

	tests := []struct {
		url    string
		want   Outcome
		status int
	}{
		{srv.URL + "/ok", OutcomeSuccess, http.StatusOK},
		{srv.URL + "/moved", OutcomeRedirect, http.StatusMovedPermanently},
		{srv.URL + "/slow", OutcomeTransportError, 0},
		{"http://rexprobe-does-not-exist.invalid/", OutcomeTransportError, 0},
		{srv.URL + "/missing", OutcomeStatus, http.StatusNotFound},
		{srv.URL + "/ok", OutcomeSuccess, http.StatusOK},
		{"ftp://" + strings.TrimPrefix(srv.URL, "http://"), OutcomeClientError, 0},
	}
	urls := make([]string, len(tests))
	for i, tt := range tests {
		urls[i] = tt.url
	}

	results := NewScheduler(prober, SchedulerConfig{Budget: 3}).Run(context.Background(), urls).Results()
	if len(results) != len(tests) {
		t.Fatalf("expected %d records, got %d", len(tests), len(results))
	}
	for i, tt := range tests {
		r := results[i]
		if r.Index != i+1 || r.URL != tt.url {
			t.Errorf("position %d: index %d url %s, want index %d url %s", i, r.Index, r.URL, i+1, tt.url)
		}
		if r.Outcome != tt.want || r.StatusCode != tt.status {
			t.Errorf("%s: got %s/%d, want %s/%d (%s)", tt.url, r.Outcome, r.StatusCode, tt.want, tt.status, r.Error)
		}
	}
	if u, ok := fetcher.fetched(2); !ok || u != srv.URL+"/target" {
		t.Errorf("redirect target not fetched for index 2: %q", u)
	}
	if _, ok := fetcher.fetched(1); ok {
		t.Error("200 body fetched without download enabled")
	}
}
