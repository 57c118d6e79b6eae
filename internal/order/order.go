// Package order reorders candidate sequences by composable policies.
package order

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/maruel/natural"
)

// Policy is one ordering step.
type Policy string

const (
	Natural    Policy = "natural"
	Ascending  Policy = "asc"
	Descending Policy = "desc"
	Random     Policy = "random"
)

// Names lists the accepted policy names for help output.
var Names = []string{string(Natural), string(Ascending), string(Descending), string(Random)}

// Parse maps a policy name (or its long alias) to a Policy.
func Parse(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "natural":
		return Natural, nil
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	case "random":
		return Random, nil
	}
	return "", fmt.Errorf("unknown sort policy %q (want one of %s)", name, strings.Join(Names, ", "))
}

// ParseAll parses every name, failing on the first unknown one.
func ParseAll(names []string) ([]Policy, error) {
	policies := make([]Policy, 0, len(names))
	for _, n := range names {
		p, err := Parse(n)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, nil
}

// Apply runs each policy in order on the output of the previous one and
// returns a new slice; seq is never modified. Repeated policies are applied
// as many times as they appear.
func Apply(seq []string, policies []Policy) []string {
	out := slices.Clone(seq)
	for _, p := range policies {
		switch p {
		case Natural:
			slices.SortStableFunc(out, compareNatural)
		case Ascending:
			slices.Sort(out)
		case Descending:
			slices.SortFunc(out, func(a, b string) int { return strings.Compare(b, a) })
		case Random:
			rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		}
	}
	return out
}

func compareNatural(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	}
	return 0
}
