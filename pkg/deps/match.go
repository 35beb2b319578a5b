package deps

import (
	"cmp"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/matzehuels/una/pkg/names"
	"github.com/matzehuels/una/pkg/pyimport"
)

// Matcher decides which external imports are not covered by known names.
type Matcher struct {
	// Cutoff is the minimum similarity ratio in [0, 1] for an import to be
	// considered a spelling of a known name.
	Cutoff float64
}

// DiffExternal returns the imports in imports that match no known name,
// lowercased. An import matches when it is known verbatim or when it is
// close to a known name lowercased with "-" replaced by "_".
func (m Matcher) DiffExternal(imports pyimport.Imports, known names.Set) names.Set {
	unknown := imports.Values().Diff(known)
	if unknown.Len() == 0 {
		return unknown
	}
	normalized := known.Map(func(s string) string {
		return strings.ReplaceAll(strings.ToLower(s), "-", "_")
	}).Sorted()

	out := names.New(0)
	for u := range unknown.Map(strings.ToLower) {
		if len(CloseMatches(u, normalized, 1, m.Cutoff)) == 0 {
			out.Add(u)
		}
	}
	return out
}

// CloseMatches returns up to n of the possibilities most similar to word
// whose similarity ratio is at least cutoff, best first. Strings are
// compared character by character.
func CloseMatches(word string, possibilities []string, n int, cutoff float64) []string {
	if n <= 0 {
		return nil
	}
	type scored struct {
		score float64
		value string
	}
	var found []scored

	sm := difflib.NewMatcher(nil, chars(word))
	for _, p := range possibilities {
		sm.SetSeq1(chars(p))
		if sm.RealQuickRatio() >= cutoff && sm.QuickRatio() >= cutoff {
			if r := sm.Ratio(); r >= cutoff {
				found = append(found, scored{r, p})
			}
		}
	}
	slices.SortFunc(found, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return strings.Compare(b.value, a.value)
	})

	out := make([]string, 0, min(n, len(found)))
	for _, f := range found[:min(n, len(found))] {
		out = append(out, f.value)
	}
	return out
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
