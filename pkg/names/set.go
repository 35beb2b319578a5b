// Package names provides the string set used throughout una for import and
// package names.
//
// Every stage of the dependency engine works on sets of names: the imports
// found in a source tree, the standard-library modules of a Python version,
// the names a distribution exposes. Set keeps those operations short and
// order-independent; use [Set.Sorted] whenever output must be deterministic.
package names

import (
	"maps"
	"slices"
	"strings"
)

// Set is an unordered collection of distinct names.
// The zero value is a nil map: it can be read but not written. Use [New] or
// [Of] to create a writable set.
type Set map[string]struct{}

// New returns an empty set with room for n names.
func New(n int) Set { return make(Set, n) }

// Of returns a set holding the given names.
func Of(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Add inserts names into s.
func (s Set) Add(items ...string) {
	for _, it := range items {
		s[it] = struct{}{}
	}
}

// Has reports whether name is in s.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names in s.
func (s Set) Len() int { return len(s) }

// Clone returns a shallow copy of s. Cloning a nil set yields an empty set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	maps.Copy(out, s)
	return out
}

// Merge adds every name of other into s.
func (s Set) Merge(other Set) {
	for k := range other {
		s[k] = struct{}{}
	}
}

// Union returns a new set containing names from s and all others.
func (s Set) Union(others ...Set) Set {
	out := s.Clone()
	for _, o := range others {
		out.Merge(o)
	}
	return out
}

// Diff returns the names of s that are in none of the others.
func (s Set) Diff(others ...Set) Set {
	out := make(Set, len(s))
	for k := range s {
		if !anyHas(others, k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Intersect returns the names present in both s and other.
func (s Set) Intersect(other Set) Set {
	out := make(Set)
	for k := range s {
		if other.Has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Without returns a copy of s with the given names removed.
func (s Set) Without(items ...string) Set {
	out := s.Clone()
	for _, it := range items {
		delete(out, it)
	}
	return out
}

// Map returns a new set with fn applied to every name.
func (s Set) Map(fn func(string) string) Set {
	out := make(Set, len(s))
	for k := range s {
		out[fn(k)] = struct{}{}
	}
	return out
}

// Sorted returns the names of s in ascending order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// String joins the sorted names with ", ".
func (s Set) String() string {
	return strings.Join(s.Sorted(), ", ")
}

func anyHas(sets []Set, k string) bool {
	for _, o := range sets {
		if o.Has(k) {
			return true
		}
	}
	return false
}
