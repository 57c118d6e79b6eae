package scanner

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestThrottlerUnlimited(t *testing.T) {
	t.Parallel()

	th := NewThrottler(0, false, nil)
	start := time.Now()
	for range 100 {
		if err := th.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if d := time.Since(start); d > 100*time.Millisecond {
		t.Errorf("unpaced throttler took %s", d)
	}
}

func TestThrottlerNilIsNoop(t *testing.T) {
	t.Parallel()

	var th *Throttler
	if err := th.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	th.Observe(ProbeResult{StatusCode: 429})
}

func TestThrottlerBackoffAndRecover(t *testing.T) {
	t.Parallel()

	base := rate.Every(100 * time.Millisecond)
	th := NewThrottler(100*time.Millisecond, true, nil)

	th.RecordStatus(429)
	slowed := th.Limit()
	if slowed >= base {
		t.Fatalf("expected slower pace after 429, got %v", slowed)
	}
	th.RecordStatus(503)
	if th.Limit() >= slowed {
		t.Fatalf("expected further backoff after 503, got %v", th.Limit())
	}

	th.RecordStatus(200)
	th.RecordStatus(429)
	th.RecordStatus(200)
	for range 10 {
		th.RecordStatus(429)
		th.RecordStatus(200)
	}
	if th.Limit() > base {
		t.Errorf("recovered past base pace: %v", th.Limit())
	}
}

func TestThrottlerBackoffFloor(t *testing.T) {
	t.Parallel()

	th := NewThrottler(0, true, nil)
	for range 50 {
		th.RecordStatus(429)
	}
	if got, floor := th.Limit(), rate.Every(backoffMax); got < floor {
		t.Errorf("limit %v below floor %v", got, floor)
	}
}

func TestThrottlerErrorsNeedThreshold(t *testing.T) {
	t.Parallel()

	th := NewThrottler(0, true, nil)
	th.RecordError()
	th.RecordError()
	if th.Limit() != rate.Inf {
		t.Fatalf("backed off before %d errors", errorThreshold)
	}
	th.RecordError()
	if th.Limit() == rate.Inf {
		t.Fatal("expected backoff after repeated errors")
	}
	th.Observe(ProbeResult{Outcome: OutcomeSuccess, StatusCode: 200})
	if th.Limit() != rate.Inf {
		t.Errorf("expected recovery to unlimited, got %v", th.Limit())
	}
}

func TestThrottlerDisabledIgnoresSignals(t *testing.T) {
	t.Parallel()

	th := NewThrottler(0, false, nil)
	for range 5 {
		th.Observe(ProbeResult{StatusCode: 429})
		th.RecordError()
	}
	if th.Limit() != rate.Inf {
		t.Errorf("non-adaptive throttler changed pace: %v", th.Limit())
	}
}
