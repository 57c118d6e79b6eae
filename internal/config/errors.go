package config

import "errors"

// Configuration validation errors returned by Options.Validate and
// Options.ValidateGeneration. Callers match them with errors.Is.
var (
	ErrNoPattern                = errors.New("no pattern specified: use -p/--pattern")
	ErrInvalidLimit             = errors.New("invalid limit: must be at least 1")
	ErrInvalidCount             = errors.New("invalid count: must be non-negative")
	ErrInvalidThreads           = errors.New("invalid threads: must be positive")
	ErrInvalidTimeout           = errors.New("invalid timeout: must be positive")
	ErrInvalidInterval          = errors.New("invalid interval: must be non-negative")
	ErrInvalidProxy             = errors.New("invalid proxy URL")
	ErrInvalidDownloadThreads   = errors.New("invalid download threads: must be positive")
	ErrInvalidMaxBodySize       = errors.New("invalid max body size: must be non-negative")
	ErrInvalidFormat            = errors.New("invalid format: must be one of yaml, json, csv")
	ErrConflictingStatusFilters = errors.New("--include-status and --exclude-status are mutually exclusive")
)
