// Package generate expands a regular expression into candidate strings.
//
// Two modes are supported. Exhaustive mode walks the parsed expression and
// emits its whole language, with unbounded quantifiers capped by the
// pattern's repetition limit. Random mode asks a Sampler for independent
// samples.
package generate

import (
	"context"
	"errors"
	"fmt"
	"regexp/syntax"

	"github.com/sirupsen/logrus"

	"github.com/maxvaer/rexprobe/internal/log"
)

// Mode selects how candidates are produced.
type Mode int

const (
	ModeRandom Mode = iota
	ModeExhaustive
)

func (m Mode) String() string {
	if m == ModeExhaustive {
		return "exhaustive"
	}
	return "random"
}

// Pattern is a regex plus the repetition bound applied to unbounded
// quantifiers.
type Pattern struct {
	Expr  string
	Limit int
}

// Options controls a single Expand call.
type Options struct {
	Mode  Mode
	Count int // random mode only

	// Sampler overrides the default reggen-backed sampler in random mode.
	Sampler Sampler

	Logger *logrus.Logger

	// OnProgress is called after each produced (or skipped) candidate.
	OnProgress func()
}

// PatternError reports a pattern that cannot produce any candidate.
type PatternError struct {
	Expr string
	Err  error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Expr, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// SampleError reports one failed random sample. It is never returned from
// Expand; it is logged and the sample is skipped.
type SampleError struct {
	Attempt int
	Err     error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("sample %d failed: %v", e.Attempt, e.Err)
}

func (e *SampleError) Unwrap() error { return e.Err }

// errEmptyLanguage is wrapped in a PatternError when the bounded language
// has no members.
var errEmptyLanguage = errors.New("pattern matches no string")

// Compile parses the expression. Both modes call it first so that an
// invalid pattern fails before any candidate is produced.
func Compile(p Pattern) (*syntax.Regexp, error) {
	if p.Limit < 1 {
		return nil, &PatternError{Expr: p.Expr, Err: fmt.Errorf("limit must be at least 1, got %d", p.Limit)}
	}
	re, err := syntax.Parse(p.Expr, syntax.Perl)
	if err != nil {
		return nil, &PatternError{Expr: p.Expr, Err: err}
	}
	return re, nil
}

// Expand produces candidates for p. When ctx is cancelled the candidates
// produced so far are returned along with ctx.Err().
func Expand(ctx context.Context, p Pattern, opts Options) ([]string, error) {
	re, err := Compile(p)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}

	if opts.Mode == ModeExhaustive {
		return expandAll(ctx, p, re, opts.OnProgress)
	}

	sampler := opts.Sampler
	if sampler == nil {
		sampler, err = NewRegexSampler(p.Expr)
		if err != nil {
			return nil, &PatternError{Expr: p.Expr, Err: err}
		}
	}
	return sample(ctx, p, sampler, opts.Count, logger, opts.OnProgress)
}

func expandAll(ctx context.Context, p Pattern, re *syntax.Regexp, onProgress func()) ([]string, error) {
	var out []string
	e := newEnumerator(p.Limit)
	e.Walk(re, func(s string) bool {
		if ctx.Err() != nil {
			return false
		}
		out = append(out, s)
		if onProgress != nil {
			onProgress()
		}
		return true
	})
	if err := ctx.Err(); err != nil {
		return out, err
	}
	if len(out) == 0 {
		return nil, &PatternError{Expr: p.Expr, Err: errEmptyLanguage}
	}
	return out, nil
}

func sample(ctx context.Context, p Pattern, s Sampler, count int, logger *logrus.Logger, onProgress func()) ([]string, error) {
	out := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		str, err := safeSample(s, p.Limit)
		if err != nil {
			serr := &SampleError{Attempt: i, Err: err}
			logger.WithField("pattern", p.Expr).Warn(serr.Error())
		} else {
			out = append(out, str)
		}
		if onProgress != nil {
			onProgress()
		}
	}
	return out, nil
}

// safeSample turns a panic inside the sampling library into an error so a
// single bad sample cannot abort the run.
func safeSample(s Sampler, limit int) (str string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sampler panic: %v", r)
		}
	}()
	return s.Sample(limit)
}
