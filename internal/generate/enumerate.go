package generate

import "regexp/syntax"

const (
	printableMin = 0x20
	printableMax = 0x7e

	// Classes wider than this (negated classes, \D, \S...) are clipped to
	// printable ASCII, see classRunes.
	maxClassRunes = 256
)

// enumerator walks a parsed expression in canonical order: alternatives
// left to right, repetition counts ascending, class members ascending.
type enumerator struct {
	limit int
}

func newEnumerator(limit int) *enumerator {
	return &enumerator{limit: limit}
}

// Walk calls emit with every string of the bounded language of re. emit
// returning false stops the walk.
func (e *enumerator) Walk(re *syntax.Regexp, emit func(string) bool) {
	e.walk(re, "", emit)
}

// walk calls k with every expansion of re appended to prefix. It returns
// false once k asked to stop.
func (e *enumerator) walk(re *syntax.Regexp, prefix string, k func(string) bool) bool {
	switch re.Op {
	case syntax.OpNoMatch:
		return true
	case syntax.OpEmptyMatch,
		syntax.OpBeginLine, syntax.OpEndLine,
		syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return k(prefix)
	case syntax.OpLiteral:
		return k(prefix + string(re.Rune))
	case syntax.OpCharClass:
		for _, r := range classRunes(re.Rune) {
			if !k(prefix + string(r)) {
				return false
			}
		}
		return true
	case syntax.OpAnyCharNotNL, syntax.OpAnyChar:
		for r := rune(printableMin); r <= printableMax; r++ {
			if !k(prefix + string(r)) {
				return false
			}
		}
		return true
	case syntax.OpCapture:
		return e.walk(re.Sub[0], prefix, k)
	case syntax.OpConcat:
		return e.concat(re.Sub, prefix, k)
	case syntax.OpAlternate:
		for _, sub := range re.Sub {
			if !e.walk(sub, prefix, k) {
				return false
			}
		}
		return true
	case syntax.OpStar:
		return e.repeat(re.Sub[0], 0, e.unbounded(0), prefix, k)
	case syntax.OpPlus:
		return e.repeat(re.Sub[0], 1, e.unbounded(1), prefix, k)
	case syntax.OpQuest:
		return e.repeat(re.Sub[0], 0, 1, prefix, k)
	case syntax.OpRepeat:
		maxRep := re.Max
		if maxRep < 0 {
			maxRep = e.unbounded(re.Min)
		}
		return e.repeat(re.Sub[0], re.Min, maxRep, prefix, k)
	}
	return true
}

// unbounded is the upper repetition count for an open-ended quantifier
// with the given minimum.
func (e *enumerator) unbounded(minRep int) int {
	return max(minRep, e.limit)
}

func (e *enumerator) concat(subs []*syntax.Regexp, prefix string, k func(string) bool) bool {
	if len(subs) == 0 {
		return k(prefix)
	}
	return e.walk(subs[0], prefix, func(s string) bool {
		return e.concat(subs[1:], s, k)
	})
}

func (e *enumerator) repeat(sub *syntax.Regexp, minRep, maxRep int, prefix string, k func(string) bool) bool {
	for n := minRep; n <= maxRep; n++ {
		if !e.times(sub, n, prefix, k) {
			return false
		}
	}
	return true
}

func (e *enumerator) times(sub *syntax.Regexp, n int, prefix string, k func(string) bool) bool {
	if n == 0 {
		return k(prefix)
	}
	return e.walk(sub, prefix, func(s string) bool {
		return e.times(sub, n-1, s, k)
	})
}

// classRunes expands the [lo, hi] pairs of a character class. A class
// wider than maxClassRunes keeps its printable ASCII members, or its first
// maxClassRunes members when it has none.
func classRunes(ranges []rune) []rune {
	total := 0
	for i := 0; i+1 < len(ranges); i += 2 {
		total += int(ranges[i+1]-ranges[i]) + 1
	}

	var out []rune
	if total > maxClassRunes {
		for i := 0; i+1 < len(ranges); i += 2 {
			for r := max(ranges[i], printableMin); r <= min(ranges[i+1], printableMax); r++ {
				out = append(out, r)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	for i := 0; i+1 < len(ranges) && len(out) < maxClassRunes; i += 2 {
		for r := ranges[i]; r <= ranges[i+1] && len(out) < maxClassRunes; r++ {
			out = append(out, r)
		}
	}
	return out
}

// runeRanges packs ascending runes back into [lo, hi] pairs.
func runeRanges(runes []rune) []rune {
	var out []rune
	for i, r := range runes {
		if i > 0 && r == out[len(out)-1]+1 {
			out[len(out)-1] = r
			continue
		}
		out = append(out, r, r)
	}
	return out
}
