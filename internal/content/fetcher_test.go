package content

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchStoresBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		fmt.Fprint(w, "hello body")
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "contents", "run")
	f := New(Config{Dir: dir, Client: srv.Client()})

	d, err := f.Fetch(context.Background(), 3, srv.URL+"/page")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if d.Bytes != int64(len("hello body")) {
		t.Errorf("Bytes = %d", d.Bytes)
	}
	if filepath.Dir(d.Path) != dir {
		t.Errorf("stored outside content dir: %s", d.Path)
	}
	if filepath.Base(d.Path) != FileName(3, srv.URL+"/page") {
		t.Errorf("unexpected file name %s", filepath.Base(d.Path))
	}
	data, err := os.ReadFile(d.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello body" {
		t.Errorf("stored %q", data)
	}
}

func TestFetchTruncatesAtMaxBodySize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 100))
	}))
	defer srv.Close()

	f := New(Config{Dir: t.TempDir(), Client: srv.Client(), MaxBodySize: 10})
	d, err := f.Fetch(context.Background(), 1, srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !d.Truncated || d.Bytes != 10 {
		t.Errorf("expected truncation at 10 bytes, got %+v", d)
	}
	info, err := os.Stat(d.Path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 10 {
		t.Errorf("file size = %d, want 10", info.Size())
	}
}

func TestFetchNon2xxFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "never-created")
	f := New(Config{Dir: dir, Client: srv.Client()})
	if _, err := f.Fetch(context.Background(), 1, srv.URL); err == nil {
		t.Fatal("expected error for 404")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("content dir should not be created for a failed fetch")
	}
}

func TestFileNameIsPure(t *testing.T) {
	t.Parallel()

	a := FileName(1, "https://example.com/a")
	if a != FileName(1, "https://example.com/a") {
		t.Error("FileName is not deterministic")
	}
	if a == FileName(2, "https://example.com/a") {
		t.Error("different indices must not collide")
	}
	if a == FileName(1, "https://example.com/b") {
		t.Error("different URLs must not collide")
	}
}

func TestConcurrentFetchesDoNotCollide(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, r.URL.Path)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := New(Config{Dir: dir, Client: srv.Client(), MaxConcurrent: 3})

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.Fetch(context.Background(), i, fmt.Sprintf("%s/p%d", srv.URL, i)); err != nil {
				t.Errorf("fetch %d: %v", i, err)
			}
		}()
	}
	wg.Wait()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 20 {
		t.Errorf("expected 20 stored bodies, got %d", len(entries))
	}
}

func TestMaxConcurrentBoundsDownloads(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	f := New(Config{Dir: t.TempDir(), Client: srv.Client(), MaxConcurrent: 2})

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.Fetch(context.Background(), i, fmt.Sprintf("%s/d%d", srv.URL, i)); err != nil {
				t.Errorf("fetch %d: %v", i, err)
			}
		}()
	}
	wg.Wait()

	if got := peak.Load(); got != 2 {
		t.Errorf("peak concurrent downloads = %d, want 2", got)
	}
}

func TestFetchWaitingForSlotHonoursContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()

	f := New(Config{Dir: t.TempDir(), Client: srv.Client(), MaxConcurrent: 1})
	held := make(chan struct{})
	go func() {
		defer close(held)
		_, _ = f.Fetch(context.Background(), 1, srv.URL+"/held")
	}()
	time.Sleep(30 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := f.Fetch(ctx, 2, srv.URL+"/queued")

	close(release)
	<-held
	if err == nil {
		t.Fatal("expected the queued download to give up when its context ends")
	}
}
