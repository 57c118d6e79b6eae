package filter

import (
	"testing"

	"github.com/maxvaer/rexprobe/internal/scanner"
)

func TestStatusFilter_Include(t *testing.T) {
	f := NewStatusFilter([]int{200, 301}, nil)

	r200 := &scanner.ProbeResult{Outcome: scanner.OutcomeSuccess, StatusCode: 200}
	if f.ShouldFilter(r200) {
		t.Error("200 should pass include filter")
	}

	r404 := &scanner.ProbeResult{Outcome: scanner.OutcomeStatus, StatusCode: 404}
	if !f.ShouldFilter(r404) {
		t.Error("404 should be filtered by include filter")
	}
}

func TestStatusFilter_Exclude(t *testing.T) {
	f := NewStatusFilter(nil, []int{404, 500})

	r200 := &scanner.ProbeResult{Outcome: scanner.OutcomeSuccess, StatusCode: 200}
	if f.ShouldFilter(r200) {
		t.Error("200 should pass exclude filter")
	}

	r404 := &scanner.ProbeResult{Outcome: scanner.OutcomeStatus, StatusCode: 404}
	if !f.ShouldFilter(r404) {
		t.Error("404 should be filtered by exclude filter")
	}
}

func TestStatusFilter_KeepsErrors(t *testing.T) {
	f := NewStatusFilter([]int{200}, nil)

	r := &scanner.ProbeResult{Outcome: scanner.OutcomeTransportError, Error: "dial tcp: connection refused"}
	if f.ShouldFilter(r) {
		t.Error("transport errors have no status and should not be hidden by a status filter")
	}
}

func TestOutcomeFilter(t *testing.T) {
	f := NewOutcomeFilter(scanner.OutcomeTransportError, scanner.OutcomeClientError)

	if !f.ShouldFilter(&scanner.ProbeResult{Outcome: scanner.OutcomeClientError}) {
		t.Error("client error should be hidden")
	}
	if f.ShouldFilter(&scanner.ProbeResult{Outcome: scanner.OutcomeRedirect, StatusCode: 302}) {
		t.Error("redirect should pass")
	}
}

func TestChain_ShortCircuits(t *testing.T) {
	chain := NewChain()
	chain.Add(NewStatusFilter(nil, []int{404}))
	chain.Add(NewOutcomeFilter(scanner.OutcomeStatus))

	r := &scanner.ProbeResult{Outcome: scanner.OutcomeStatus, StatusCode: 404}
	filtered, reason := chain.Apply(r)
	if !filtered {
		t.Error("expected chain to filter")
	}
	if reason != "status" {
		t.Errorf("expected reason 'status', got %q", reason)
	}

	r = &scanner.ProbeResult{Outcome: scanner.OutcomeStatus, StatusCode: 410}
	if _, reason := chain.Apply(r); reason != "outcome" {
		t.Errorf("expected reason 'outcome', got %q", reason)
	}
}

func TestChain_NilAndEmpty(t *testing.T) {
	var nilChain *Chain
	if filtered, _ := nilChain.Apply(&scanner.ProbeResult{}); filtered {
		t.Error("nil chain should not filter")
	}
	if filtered, _ := NewChain().Apply(&scanner.ProbeResult{StatusCode: 500}); filtered {
		t.Error("empty chain should not filter")
	}
}
