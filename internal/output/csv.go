package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/maxvaer/rexprobe/internal/scanner"
)

// CSVWriter writes the run log in CSV format, one row per probe. Headers
// are not included.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter creates a CSV run-log writer.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

func (c *CSVWriter) WriteHeader() error {
	return c.w.Write([]string{"index", "url", "outcome", "status", "redirect", "content", "error", "duration"})
}

func (c *CSVWriter) WriteResult(result *scanner.ProbeResult) error {
	e := newLogEntry(result)
	status := ""
	if e.StatusCode != 0 {
		status = strconv.Itoa(e.StatusCode)
	}
	return c.w.Write([]string{
		strconv.Itoa(e.Index),
		e.URL,
		e.Outcome,
		status,
		e.RedirectURL,
		e.Content,
		e.Error,
		e.Duration,
	})
}

func (c *CSVWriter) WriteFooter(_ Stats) error {
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error { return nil }
