package scanner

import (
	"fmt"
	"net/http"
	"time"
)

// Outcome classifies a probe. Each ProbeResult carries exactly one.
type Outcome int

const (
	// OutcomeSuccess is a 2xx response.
	OutcomeSuccess Outcome = iota + 1
	// OutcomeRedirect is a 3xx response with a Location header.
	OutcomeRedirect
	// OutcomeStatus is any other HTTP status; terminal, nothing is fetched.
	OutcomeStatus
	// OutcomeClientError is a failure that is not a network failure, such as
	// a malformed URL or an unsupported scheme.
	OutcomeClientError
	// OutcomeTransportError is a network failure: refused connection,
	// timeout, DNS, TLS.
	OutcomeTransportError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeStatus:
		return "status"
	case OutcomeClientError:
		return "client_error"
	case OutcomeTransportError:
		return "transport_error"
	}
	return "unknown"
}

// ParseOutcome returns the Outcome named by s, as printed by String.
func ParseOutcome(s string) (Outcome, error) {
	for o := OutcomeSuccess; o <= OutcomeTransportError; o++ {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown outcome %q", s)
}

// ProbeResult is the record of one probe.
type ProbeResult struct {
	Index       int // 1-based position in the sequence given to the Scheduler
	URL         string
	Outcome     Outcome
	StatusCode  int
	Headers     http.Header
	RedirectURL string // resolved Location, redirects only
	Error       string // client and transport errors only
	ContentPath string // stored body, when a fetch succeeded
	Duration    time.Duration
}

// Failed reports whether the probe produced no HTTP response.
func (r *ProbeResult) Failed() bool {
	return r.Outcome == OutcomeClientError || r.Outcome == OutcomeTransportError
}
