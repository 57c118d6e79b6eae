package output

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/maxvaer/rexprobe/internal/scanner"
)

// JSONWriter writes the run log as a JSON object keyed by index. Keys are
// emitted in numeric order, which encoding/json would not do for a map.
type JSONWriter struct {
	w       io.Writer
	entries []logEntry
}

// NewJSONWriter creates a JSON run-log writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: w}
}

func (j *JSONWriter) WriteHeader() error { return nil }

func (j *JSONWriter) WriteResult(result *scanner.ProbeResult) error {
	j.entries = append(j.entries, newLogEntry(result))
	return nil
}

func (j *JSONWriter) WriteFooter(_ Stats) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range j.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		val, err := json.MarshalIndent(e, "  ", "  ")
		if err != nil {
			return err
		}
		buf.WriteString("\n  ")
		buf.WriteString(strconv.Quote(strconv.Itoa(e.Index)))
		buf.WriteString(": ")
		buf.Write(val)
	}
	if len(j.entries) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	_, err := j.w.Write(buf.Bytes())
	return err
}

func (j *JSONWriter) Close() error { return nil }
