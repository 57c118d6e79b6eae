// Package output renders probe results: the run log written once at the
// end of a run, the progress line and the live status lines.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maxvaer/rexprobe/internal/scanner"
)

// Run-log formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Stats holds aggregate run statistics.
type Stats struct {
	Total          int
	Success        int
	Redirects      int
	Statuses       int
	Errors         int
	Downloads      int
	Duration       time.Duration
	RequestsPerSec float64
}

// Summarize counts results by outcome.
func Summarize(results []scanner.ProbeResult, elapsed time.Duration) Stats {
	s := Stats{Total: len(results), Duration: elapsed}
	for i := range results {
		r := &results[i]
		switch r.Outcome {
		case scanner.OutcomeSuccess:
			s.Success++
		case scanner.OutcomeRedirect:
			s.Redirects++
		case scanner.OutcomeStatus:
			s.Statuses++
		default:
			s.Errors++
		}
		if r.ContentPath != "" {
			s.Downloads++
		}
	}
	if secs := elapsed.Seconds(); secs > 0 {
		s.RequestsPerSec = float64(s.Total) / secs
	}
	return s
}

// Writer is implemented by each run-log format. Results are passed in index
// order; nothing reaches the destination before WriteFooter.
type Writer interface {
	WriteHeader() error
	WriteResult(result *scanner.ProbeResult) error
	WriteFooter(stats Stats) error
	Close() error
}

// NewWriter returns a Writer for format writing to w.
func NewWriter(format string, w io.Writer) (Writer, error) {
	switch format {
	case FormatYAML, "":
		return NewYAMLWriter(w), nil
	case FormatJSON:
		return NewJSONWriter(w), nil
	case FormatCSV:
		return NewCSVWriter(w), nil
	}
	return nil, fmt.Errorf("unknown run-log format %q", format)
}

// Extension returns the file extension used for format.
func Extension(format string) string {
	if format == "" {
		return "." + FormatYAML
	}
	return "." + format
}

// WriteLog serialises results to path in one pass, creating the parent
// directory. The file is written to a temporary name and renamed so a
// failed write never leaves a half-written log behind.
func WriteLog(path, format string, results []scanner.ProbeResult, stats Stats) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating log dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+strings.TrimPrefix(filepath.Base(path), ".")+".*")
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w, err := NewWriter(format, tmp)
	if err != nil {
		return err
	}
	if err := w.WriteHeader(); err != nil {
		return err
	}
	for i := range results {
		if err := w.WriteResult(&results[i]); err != nil {
			return err
		}
	}
	if err := w.WriteFooter(stats); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// logEntry is the serialised form of one ProbeResult.
type logEntry struct {
	Index       int               `yaml:"-" json:"-"`
	URL         string            `yaml:"url" json:"url"`
	Outcome     string            `yaml:"outcome" json:"outcome"`
	StatusCode  int               `yaml:"status_code,omitempty" json:"status_code,omitempty"`
	Error       string            `yaml:"error,omitempty" json:"error,omitempty"`
	RedirectURL string            `yaml:"redirect_url,omitempty" json:"redirect_url,omitempty"`
	Content     string            `yaml:"content,omitempty" json:"content,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Duration    string            `yaml:"duration" json:"duration"`
}

func newLogEntry(r *scanner.ProbeResult) logEntry {
	e := logEntry{
		Index:       r.Index,
		URL:         r.URL,
		Outcome:     r.Outcome.String(),
		StatusCode:  r.StatusCode,
		Error:       r.Error,
		RedirectURL: r.RedirectURL,
		Content:     r.ContentPath,
		Duration:    r.Duration.Round(time.Millisecond).String(),
	}
	if len(r.Headers) > 0 {
		e.Headers = make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			e.Headers[k] = strings.Join(v, ", ")
		}
	}
	return e
}
