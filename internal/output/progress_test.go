package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

// syncBuffer is a bytes.Buffer safe for the progress goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProgressQuietPrintsLinesOnly(t *testing.T) {
	t.Parallel()

	var buf syncBuffer
	p := NewProgress(&buf, "Probing", 2, true)
	p.Start()
	p.Increment()
	p.Println(nil, "[200]: https://e.x/")
	p.Stop()

	if got := buf.String(); got != "[200]: https://e.x/\n" {
		t.Errorf("quiet progress wrote %q", got)
	}
}

func TestProgressFinalLine(t *testing.T) {
	t.Parallel()

	var buf syncBuffer
	p := NewProgress(&buf, "Probing", 4, false)
	p.Start()
	p.Increment()
	p.Increment()
	p.Println(nil, "line")
	p.Stop()
	p.Stop()

	out := buf.String()
	if !strings.Contains(out, "line\n") {
		t.Errorf("printed line missing: %q", out)
	}
	if !strings.Contains(out, "Probing [ 50%] 2/4") {
		t.Errorf("final progress line missing: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("progress should end with a newline: %q", out)
	}
}

func TestProgressStopWithoutStart(t *testing.T) {
	t.Parallel()

	p := NewProgress(&syncBuffer{}, "Generating", 1, false)
	p.Stop()
}

func TestProgressPaused(t *testing.T) {
	t.Parallel()

	var buf syncBuffer
	p := NewProgress(&buf, "Probing", 10, false)
	p.Start()
	p.SetPaused(true)
	p.Stop()
	if !strings.Contains(buf.String(), "PAUSED") {
		t.Errorf("expected PAUSED marker, got %q", buf.String())
	}
}
