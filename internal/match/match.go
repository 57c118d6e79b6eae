// Package match filters candidates by a pattern. It uses regexp2 so that
// patterns written for backtracking engines (lookarounds, backreferences)
// can be used to select from a candidate list.
package match

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultTimeout bounds a single match against pathological patterns.
const DefaultTimeout = time.Second

// Matcher reports whether a candidate is fully matched by a pattern.
type Matcher struct {
	re *regexp2.Regexp
}

// New compiles pattern, anchored at both ends.
func New(pattern string) (*Matcher, error) {
	re, err := regexp2.Compile(`^(?:`+pattern+`)$`, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compiling match pattern %q: %w", pattern, err)
	}
	re.MatchTimeout = DefaultTimeout
	return &Matcher{re: re}, nil
}

// Match reports whether s is matched by the whole pattern.
func (m *Matcher) Match(s string) (bool, error) {
	return m.re.MatchString(s)
}

// Filter returns the candidates that match, in input order. onError is
// called for candidates whose match failed (e.g. timeout); they are
// excluded.
func (m *Matcher) Filter(lines []string, onError func(line string, err error)) []string {
	var out []string
	for _, l := range lines {
		ok, err := m.Match(l)
		if err != nil {
			if onError != nil {
				onError(l, err)
			}
			continue
		}
		if ok {
			out = append(out, l)
		}
	}
	return out
}
