// Package candidates reads literal candidate lists and writes generated
// candidate files (one string per line, newline-terminated, UTF-8).
package candidates

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Read returns the non-empty lines of r in order. Lines starting with '#'
// are comments. Duplicates are kept: each line is one probe.
func Read(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("reading candidates: %w", err)
	}
	return out, nil
}

// Load reads candidates from the file at path.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening candidates file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Write writes one candidate per line.
func Write(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := bw.WriteString(l); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes candidates to path, replacing any existing file. The lines
// go to a temporary file in the same directory which is then renamed, so
// an interrupted write leaves the previous file in place.
func Save(path string, lines []string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating candidates file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("creating candidates file: %w", err)
	}
	if err := Write(tmp, lines); err != nil {
		return fmt.Errorf("writing candidates file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing candidates file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing candidates file: %w", err)
	}
	return nil
}
