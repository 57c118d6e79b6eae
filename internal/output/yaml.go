package output

import (
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/maxvaer/rexprobe/internal/scanner"
)

// YAMLWriter writes the run log as a YAML mapping keyed by probe index.
type YAMLWriter struct {
	w    io.Writer
	root *yaml.Node
}

// NewYAMLWriter creates a YAML run-log writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{w: w, root: &yaml.Node{Kind: yaml.MappingNode}}
}

func (y *YAMLWriter) WriteHeader() error { return nil }

// WriteResult appends one entry. A yaml.Node keeps keys in insertion order,
// which a map would not.
func (y *YAMLWriter) WriteResult(result *scanner.ProbeResult) error {
	var value yaml.Node
	if err := value.Encode(newLogEntry(result)); err != nil {
		return err
	}
	key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(result.Index)}
	y.root.Content = append(y.root.Content, key, &value)
	return nil
}

func (y *YAMLWriter) WriteFooter(_ Stats) error {
	enc := yaml.NewEncoder(y.w)
	enc.SetIndent(2)
	if err := enc.Encode(y.root); err != nil {
		return err
	}
	return enc.Close()
}

func (y *YAMLWriter) Close() error { return nil }
