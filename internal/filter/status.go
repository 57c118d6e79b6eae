package filter

import "github.com/maxvaer/rexprobe/internal/scanner"

// StatusFilter includes or excludes results based on HTTP status codes.
// Results without a status (client and transport errors) are never hidden
// by it.
type StatusFilter struct {
	include map[int]struct{}
	exclude map[int]struct{}
}

// NewStatusFilter creates a status code filter. If include is non-empty, only
// those codes pass through. If exclude is non-empty, those codes are hidden.
func NewStatusFilter(include, exclude []int) *StatusFilter {
	f := &StatusFilter{
		include: make(map[int]struct{}, len(include)),
		exclude: make(map[int]struct{}, len(exclude)),
	}
	for _, code := range include {
		f.include[code] = struct{}{}
	}
	for _, code := range exclude {
		f.exclude[code] = struct{}{}
	}
	return f
}

func (f *StatusFilter) Name() string { return "status" }

func (f *StatusFilter) ShouldFilter(result *scanner.ProbeResult) bool {
	if result.Failed() {
		return false
	}
	if len(f.include) > 0 {
		_, ok := f.include[result.StatusCode]
		return !ok
	}
	if len(f.exclude) > 0 {
		_, ok := f.exclude[result.StatusCode]
		return ok
	}
	return false
}

// OutcomeFilter hides results whose outcome is in the given set.
type OutcomeFilter struct {
	hide map[scanner.Outcome]struct{}
}

// NewOutcomeFilter creates a filter hiding the listed outcomes.
func NewOutcomeFilter(outcomes ...scanner.Outcome) *OutcomeFilter {
	f := &OutcomeFilter{hide: make(map[scanner.Outcome]struct{}, len(outcomes))}
	for _, o := range outcomes {
		f.hide[o] = struct{}{}
	}
	return f
}

func (f *OutcomeFilter) Name() string { return "outcome" }

func (f *OutcomeFilter) ShouldFilter(result *scanner.ProbeResult) bool {
	_, ok := f.hide[result.Outcome]
	return ok
}
