package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/maxvaer/rexprobe/pkg/version"
)

// Defaults for a rexprobe run.
const (
	DefaultPattern     = `https://www\.example\.com/\d{7}`
	DefaultLimit       = 1
	DefaultCount       = 10
	DefaultTimeout     = 5 * time.Second
	DefaultThreads     = 5
	DefaultLogDir      = "log"
	DefaultContentDir  = "contents"
	DefaultFormat      = "yaml"
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultDownloadThreads caps concurrent body downloads below the probe
	// budget.
	DefaultDownloadThreads = 2
)

// DefaultSort is the ordering applied when no --sort flag is given.
var DefaultSort = []string{"random"}

// Options holds all configuration for a rexprobe run. Every subcommand
// reads from the same struct; fields a mode does not use are ignored.
type Options struct {
	// Generation
	Pattern    string
	Limit      int
	Count      int
	Exhaustive bool
	Sort       []string
	// SortSet is true when Sort was configured explicitly. check and match
	// keep literal input order unless it is.
	SortSet bool

	// Input for check/match
	InputFile string
	Args      []string

	// Probing
	Threads          int
	Timeout          time.Duration
	Interval         time.Duration
	AdaptiveThrottle bool
	UserAgent        string
	Headers          map[string]string
	Proxy            string
	Insecure         bool // skip TLS certificate verification
	Download         bool
	DownloadThreads  int
	MaxBodySize      int64

	// Display
	IncludeStatus      []int
	ExcludeStatus      []int
	HideOutcomes       []string
	OnResultCmd        string // shell command run per displayed result
	DisableProgressBar bool
	NoColor            bool
	Verbose            bool
	Quiet              bool

	// Output
	OutputPath string // candidates file for gen, run-log path for check/run
	Format     string // "yaml", "json", "csv"
	LogDir     string
	ContentDir string
}

// Default returns Options populated with the stated defaults.
func Default() *Options {
	return &Options{
		Pattern:         DefaultPattern,
		Limit:           DefaultLimit,
		Count:           DefaultCount,
		Sort:            append([]string(nil), DefaultSort...),
		Threads:         DefaultThreads,
		Timeout:         DefaultTimeout,
		UserAgent:       "rexprobe/" + version.Version,
		MaxBodySize:     DefaultMaxBodySize,
		DownloadThreads: DefaultDownloadThreads,
		Format:          DefaultFormat,
		LogDir:          DefaultLogDir,
		ContentDir:      DefaultContentDir,
	}
}

// Validate checks the options shared by every mode. Generation-specific
// checks live in ValidateGeneration so that check/match runs are not
// rejected for an unused pattern.
func (o *Options) Validate() error {
	if o.Threads <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreads, o.Threads)
	}
	if o.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if o.Interval < 0 {
		return ErrInvalidInterval
	}
	if o.Proxy != "" {
		if u, err := url.Parse(o.Proxy); err != nil || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidProxy, o.Proxy)
		}
	}
	if o.DownloadThreads <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDownloadThreads, o.DownloadThreads)
	}
	if o.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	switch o.Format {
	case "yaml", "json", "csv":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, o.Format)
	}
	if len(o.IncludeStatus) > 0 && len(o.ExcludeStatus) > 0 {
		return ErrConflictingStatusFilters
	}
	return nil
}

// ValidateGeneration checks the options used by pattern expansion.
func (o *Options) ValidateGeneration() error {
	if o.Pattern == "" {
		return ErrNoPattern
	}
	if o.Limit < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, o.Limit)
	}
	if !o.Exhaustive && o.Count < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCount, o.Count)
	}
	return nil
}
