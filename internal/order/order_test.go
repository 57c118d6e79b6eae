package order

import (
	"slices"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := map[string]Policy{
		"natural":    Natural,
		"asc":        Ascending,
		"ascending":  Ascending,
		"DESC":       Descending,
		"descending": Descending,
		" random ":   Random,
	}
	for in, want := range tests {
		got, err := Parse(in)
		if err != nil {
			t.Errorf("Parse(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("Parse(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := Parse("size"); err == nil {
		t.Error("expected error for unknown policy")
	}
	if _, err := ParseAll([]string{"asc", "bogus"}); err == nil {
		t.Error("expected ParseAll to fail on unknown policy")
	}
}

func TestNaturalVersusLexical(t *testing.T) {
	t.Parallel()

	in := []string{"item10", "item2", "item1"}

	nat := Apply(in, []Policy{Natural})
	if !slices.Equal(nat, []string{"item1", "item2", "item10"}) {
		t.Errorf("natural = %q", nat)
	}

	asc := Apply(in, []Policy{Ascending})
	if !slices.Equal(asc, []string{"item1", "item10", "item2"}) {
		t.Errorf("asc = %q", asc)
	}

	desc := Apply(in, []Policy{Descending})
	if !slices.Equal(desc, []string{"item2", "item10", "item1"}) {
		t.Errorf("desc = %q", desc)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := []string{"c", "a", "b"}
	_ = Apply(in, []Policy{Ascending, Random})
	if !slices.Equal(in, []string{"c", "a", "b"}) {
		t.Errorf("input was modified: %q", in)
	}
}

func TestDeterministicPoliciesAreIdempotent(t *testing.T) {
	t.Parallel()

	in := []string{"u9", "u10", "a", "U1", "u1", "b20", "b3"}
	for _, p := range []Policy{Natural, Ascending, Descending} {
		once := Apply(in, []Policy{p})
		twice := Apply(once, []Policy{p})
		if !slices.Equal(once, twice) {
			t.Errorf("%s not idempotent: %q vs %q", p, once, twice)
		}
		if doubled := Apply(in, []Policy{p, p}); !slices.Equal(once, doubled) {
			t.Errorf("%s applied twice in one call differs: %q vs %q", p, once, doubled)
		}
	}
}

func TestRandomIsAPermutation(t *testing.T) {
	t.Parallel()

	in := make([]string, 50)
	for i := range in {
		in[i] = string(rune('A'+i%26)) + string(rune('a'+i/26))
	}
	once := Apply(in, []Policy{Random})
	// A second shuffle is allowed to differ; only the multiset is fixed.
	twice := Apply(once, []Policy{Random})

	for _, got := range [][]string{once, twice} {
		a, b := slices.Clone(got), slices.Clone(in)
		slices.Sort(a)
		slices.Sort(b)
		if !slices.Equal(a, b) {
			t.Fatalf("random is not a permutation of the input")
		}
	}
}

func TestPoliciesCompose(t *testing.T) {
	t.Parallel()

	in := []string{"x2", "x10", "x1"}

	// The last deterministic policy decides the final order.
	got := Apply(in, []Policy{Random, Ascending})
	if !slices.Equal(got, []string{"x1", "x10", "x2"}) {
		t.Errorf("[random asc] = %q", got)
	}
	got = Apply(in, []Policy{Ascending, Natural})
	if !slices.Equal(got, []string{"x1", "x2", "x10"}) {
		t.Errorf("[asc natural] = %q", got)
	}
	got = Apply(in, []Policy{Natural, Descending})
	if !slices.Equal(got, []string{"x2", "x10", "x1"}) {
		t.Errorf("[natural desc] = %q", got)
	}

	if got := Apply(in, nil); !slices.Equal(got, in) {
		t.Errorf("no policies should keep generation order, got %q", got)
	}
}
