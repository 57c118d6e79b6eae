package output

import (
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/fatih/color"

	"github.com/maxvaer/rexprobe/internal/filter"
	"github.com/maxvaer/rexprobe/internal/scanner"
)

// StatusPrinter writes one line per probe, `[200]: url`, coloured by
// status class. Results hidden by the filter chain are only counted.
type StatusPrinter struct {
	mu       sync.Mutex
	w        io.Writer
	chain    *filter.Chain
	progress *Progress

	green, cyan, yellow, red *color.Color
}

// NewStatusPrinter creates a StatusPrinter. chain may be nil.
func NewStatusPrinter(w io.Writer, chain *filter.Chain, noColor bool) *StatusPrinter {
	s := &StatusPrinter{
		w:      w,
		chain:  chain,
		green:  color.New(color.FgGreen),
		cyan:   color.New(color.FgCyan),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
	}
	if noColor {
		for _, c := range []*color.Color{s.green, s.cyan, s.yellow, s.red} {
			c.DisableColor()
		}
	}
	return s
}

// AttachProgress routes lines through p so they do not break the progress
// line, and keeps its counters current.
func (s *StatusPrinter) AttachProgress(p *Progress) {
	s.mu.Lock()
	s.progress = p
	s.mu.Unlock()
}

// Print writes the status line for r. It reports whether the line was
// shown.
func (s *StatusPrinter) Print(r scanner.ProbeResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.progress != nil {
		s.progress.Increment()
		if r.Failed() {
			s.progress.IncrementErrors()
		}
	}
	if hidden, _ := s.chain.Apply(&r); hidden {
		if s.progress != nil {
			s.progress.IncrementHidden()
		}
		return false
	}

	line := s.Format(r)
	if s.progress != nil {
		s.progress.Println(s.w, line)
	} else {
		fmt.Fprintln(s.w, line)
	}
	return true
}

// Format renders the status line for r without printing it.
func (s *StatusPrinter) Format(r scanner.ProbeResult) string {
	switch r.Outcome {
	case scanner.OutcomeClientError, scanner.OutcomeTransportError:
		return fmt.Sprintf("%s: %s (%s)", s.red.Sprint("[ERR]"), r.URL, r.Error)
	case scanner.OutcomeRedirect:
		return fmt.Sprintf("%s: %s -> %s", s.colorFor(r.StatusCode).Sprintf("[%d]", r.StatusCode), r.URL, r.RedirectURL)
	}
	return fmt.Sprintf("%s: %s", s.colorFor(r.StatusCode).Sprintf("[%d]", r.StatusCode), r.URL)
}

func (s *StatusPrinter) colorFor(code int) *color.Color {
	switch {
	case code >= http.StatusOK && code < http.StatusMultipleChoices:
		return s.green
	case code >= http.StatusMultipleChoices && code < http.StatusBadRequest:
		return s.cyan
	case code >= http.StatusBadRequest && code < http.StatusInternalServerError:
		return s.yellow
	default:
		return s.red
	}
}
