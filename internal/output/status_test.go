package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/maxvaer/rexprobe/internal/filter"
	"github.com/maxvaer/rexprobe/internal/scanner"
)

func TestStatusPrinterFormat(t *testing.T) {
	t.Parallel()

	s := NewStatusPrinter(&bytes.Buffer{}, nil, true)
	tests := []struct {
		r    scanner.ProbeResult
		want string
	}{
		{scanner.ProbeResult{URL: "https://e.x/1", Outcome: scanner.OutcomeSuccess, StatusCode: 200}, "[200]: https://e.x/1"},
		{scanner.ProbeResult{URL: "https://e.x/2", Outcome: scanner.OutcomeRedirect, StatusCode: 302, RedirectURL: "https://e.x/y"}, "[302]: https://e.x/2 -> https://e.x/y"},
		{scanner.ProbeResult{URL: "https://e.x/3", Outcome: scanner.OutcomeStatus, StatusCode: 404}, "[404]: https://e.x/3"},
		{scanner.ProbeResult{URL: "https://e.x/4", Outcome: scanner.OutcomeTransportError, Error: "timeout"}, "[ERR]: https://e.x/4 (timeout)"},
	}
	for _, tt := range tests {
		if got := s.Format(tt.r); got != tt.want {
			t.Errorf("Format() = %q, want %q", got, tt.want)
		}
	}
}

func TestStatusPrinterHidesFiltered(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	chain := filter.NewChain()
	chain.Add(filter.NewStatusFilter(nil, []int{404}))
	s := NewStatusPrinter(&buf, chain, true)

	if s.Print(scanner.ProbeResult{URL: "https://e.x/a", Outcome: scanner.OutcomeStatus, StatusCode: 404}) {
		t.Error("404 should be hidden")
	}
	if !s.Print(scanner.ProbeResult{URL: "https://e.x/b", Outcome: scanner.OutcomeSuccess, StatusCode: 200}) {
		t.Error("200 should be shown")
	}
	out := buf.String()
	if strings.Contains(out, "e.x/a") || !strings.Contains(out, "[200]: https://e.x/b") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestStatusPrinterCountsThroughProgress(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	chain := filter.NewChain()
	chain.Add(filter.NewOutcomeFilter(scanner.OutcomeStatus))
	p := NewProgress(&buf, "Probing", 3, true)
	s := NewStatusPrinter(&buf, chain, true)
	s.AttachProgress(p)

	s.Print(scanner.ProbeResult{Outcome: scanner.OutcomeSuccess, StatusCode: 200})
	s.Print(scanner.ProbeResult{Outcome: scanner.OutcomeStatus, StatusCode: 500})
	s.Print(scanner.ProbeResult{Outcome: scanner.OutcomeClientError, Error: "bad"})

	if p.Completed() != 3 || p.hidden.Load() != 1 || p.errors.Load() != 1 {
		t.Errorf("counters: completed=%d hidden=%d errors=%d", p.Completed(), p.hidden.Load(), p.errors.Load())
	}
}
