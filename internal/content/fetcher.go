// Package content downloads response bodies into the per-run content
// directory.
package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrent bounds simultaneous downloads when Config leaves it
// unset.
const DefaultMaxConcurrent = 5

// Config configures a Fetcher.
type Config struct {
	Dir           string
	Client        *http.Client
	UserAgent     string
	Headers       map[string]string
	MaxBodySize   int64 // 0 means unlimited
	MaxConcurrent int
}

// Download describes one stored body.
type Download struct {
	URL       string
	Path      string
	Bytes     int64
	Truncated bool
}

// Fetcher performs full-body GETs and stores the bodies under Dir. It is
// the only writer of that directory.
type Fetcher struct {
	dir       string
	client    *http.Client
	userAgent string
	headers   map[string]string
	maxBody   int64
	sem       *semaphore.Weighted
}

// New creates a Fetcher. The directory is created on first download.
func New(cfg Config) *Fetcher {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	n := cfg.MaxConcurrent
	if n <= 0 {
		n = DefaultMaxConcurrent
	}
	return &Fetcher{
		dir:       cfg.Dir,
		client:    client,
		userAgent: cfg.UserAgent,
		headers:   cfg.Headers,
		maxBody:   cfg.MaxBodySize,
		sem:       semaphore.NewWeighted(int64(n)),
	}
}

// Dir returns the destination directory.
func (f *Fetcher) Dir() string { return f.dir }

// FileName is the destination name for a body. It depends only on the
// probe index and the source URL, so concurrent fetches never collide.
func FileName(index int, rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return strconv.Itoa(index) + "-" + hex.EncodeToString(sum[:8])
}

// Fetch downloads rawURL and stores its body. index is the probe index the
// download belongs to.
func (f *Fetcher) Fetch(ctx context.Context, index int, rawURL string) (Download, error) {
	d := Download{URL: rawURL}

	if err := f.sem.Acquire(ctx, 1); err != nil {
		return d, err
	}
	defer f.sem.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return d, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return d, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return d, fmt.Errorf("fetching %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return d, fmt.Errorf("creating content dir: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, ".part-*")
	if err != nil {
		return d, fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	var body io.Reader = resp.Body
	if f.maxBody > 0 {
		body = io.LimitReader(resp.Body, f.maxBody+1)
	}
	n, err := io.Copy(tmp, body)
	if err == nil && f.maxBody > 0 && n > f.maxBody {
		d.Truncated = true
		n = f.maxBody
		err = tmp.Truncate(f.maxBody)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpName)
		return d, fmt.Errorf("writing body of %s: %w", rawURL, err)
	}

	dest := filepath.Join(f.dir, FileName(index, rawURL))
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return d, fmt.Errorf("storing body of %s: %w", rawURL, err)
	}

	d.Path = dest
	d.Bytes = n
	return d, nil
}
