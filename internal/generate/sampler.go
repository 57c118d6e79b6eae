package generate

import (
	"regexp/syntax"

	"github.com/lucasjones/reggen"
)

// Sampler produces one random string matching a pattern, repeating
// unbounded quantifiers at most limit times.
type Sampler interface {
	Sample(limit int) (string, error)
}

// RegexSampler samples with github.com/lucasjones/reggen. The pattern is
// rewritten per limit so that samples come from the same bounded language
// exhaustive mode walks. It is not safe for concurrent use.
type RegexSampler struct {
	expr  string
	re    *syntax.Regexp
	limit int
	gen   *reggen.Generator
	top   int
}

// NewRegexSampler parses expr for sampling.
func NewRegexSampler(expr string) (*RegexSampler, error) {
	re, err := syntax.Parse(expr, syntax.Perl)
	if err != nil {
		return nil, err
	}
	return &RegexSampler{expr: expr, re: re}, nil
}

// Sample implements Sampler.
func (s *RegexSampler) Sample(limit int) (string, error) {
	if s.gen == nil || s.limit != limit {
		b, top := bounded(s.re, limit)
		g, err := reggen.NewGenerator(b.String())
		if err != nil {
			// Nested repeats past the parser's size cap of 1000 cannot be
			// spelled out; sample the original with reggen's own bound.
			if g, err = reggen.NewGenerator(s.expr); err != nil {
				return "", err
			}
			top = limit
		}
		s.gen, s.limit, s.top = g, limit, max(top, 1)
	}
	// Every repeat carries explicit bounds now, so a generator limit at
	// or above the largest one leaves them untouched.
	return s.gen.Generate(s.top), nil
}

// bounded returns a copy of re in which *, + and {n,} are explicit
// {min,max} repeats with max = max(min, limit), wide classes hold the
// members classRunes enumerates and any-char is printable ASCII. top is
// the largest repeat bound in the copy. re is not modified.
func bounded(re *syntax.Regexp, limit int) (out *syntax.Regexp, top int) {
	c := &syntax.Regexp{
		Op:    re.Op,
		Flags: re.Flags,
		Rune:  re.Rune,
		Min:   re.Min,
		Max:   re.Max,
		Cap:   re.Cap,
		Name:  re.Name,
	}
	for _, sub := range re.Sub {
		b, t := bounded(sub, limit)
		c.Sub = append(c.Sub, b)
		top = max(top, t)
	}

	switch re.Op {
	case syntax.OpStar:
		c.Op, c.Min, c.Max = syntax.OpRepeat, 0, limit
	case syntax.OpPlus:
		c.Op, c.Min, c.Max = syntax.OpRepeat, 1, max(1, limit)
	case syntax.OpRepeat:
		if c.Max < 0 {
			c.Max = max(c.Min, limit)
		}
	case syntax.OpCharClass:
		c.Rune = runeRanges(classRunes(re.Rune))
	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		c.Op, c.Rune = syntax.OpCharClass, []rune{printableMin, printableMax}
	}
	if c.Op == syntax.OpRepeat {
		top = max(top, c.Max)
	}
	return c, top
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(limit int) (string, error)

// Sample implements Sampler.
func (f SamplerFunc) Sample(limit int) (string, error) { return f(limit) }
