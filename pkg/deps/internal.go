package deps

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/una/pkg/names"
	"github.com/matzehuels/una/pkg/pyimport"
)

// Locator finds the source root of an internal unit by name.
type Locator interface {
	Locate(name string) (string, bool)
}

// Resolver computes the internal dependency closure of a set of roots.
type Resolver struct {
	Namespace string
	Extractor *pyimport.Extractor
	Locator   Locator
	Logger    *log.Logger
}

// DiscoverInternal returns, for each root and every internal unit reachable
// from it, the internal names it imports. Names that cannot be located stay
// in the value sets without a key of their own.
func (r *Resolver) DiscoverInternal(roots []string) (pyimport.Imports, error) {
	all, err := r.Extractor.FetchAll(roots)
	if err != nil {
		return nil, err
	}
	scanned := all.Keys()
	found := InternalNames(all, r.Namespace)

	for {
		unknown := found.Values().Diff(found.Keys(), scanned)
		if unknown.Len() == 0 {
			return found, nil
		}

		var next []string
		for _, name := range unknown.Sorted() {
			scanned.Add(name)
			root, ok := r.Locator.Locate(name)
			if !ok {
				r.debug("internal name not in workspace", "name", name)
				continue
			}
			next = append(next, root)
		}
		if len(next) == 0 {
			return found, nil
		}

		extra, err := r.Extractor.FetchAll(next)
		if err != nil {
			return nil, err
		}
		scanned.Merge(extra.Keys())
		found.Merge(InternalNames(extra, r.Namespace))
	}
}

func (r *Resolver) debug(msg string, kv ...any) {
	if r.Logger != nil {
		r.Logger.Debug(msg, kv...)
	}
}

// InternalNames keeps the imports of all that refer into namespace ns and
// reduces each to the unit name (the second dotted segment). Keys left with
// no internal imports are dropped.
func InternalNames(all pyimport.Imports, ns string) pyimport.Imports {
	out := make(pyimport.Imports, len(all))
	prefix := ns + "."
	for key, imports := range all {
		units := names.New(0)
		for imp := range imports {
			if !strings.HasPrefix(imp, prefix) {
				continue
			}
			unit, _, _ := strings.Cut(imp[len(prefix):], ".")
			if unit != "" {
				units.Add(unit)
			}
		}
		if units.Len() > 0 {
			out[key] = units
		}
	}
	return out
}

// Closure returns every name reachable from start through m, excluding
// start itself.
func Closure(m pyimport.Imports, start string) names.Set {
	seen := names.Of(start)
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range m[cur] {
			if !seen.Has(next) {
				seen.Add(next)
				queue = append(queue, next)
			}
		}
	}
	return seen.Without(start)
}

// DiffInternal returns the internal names imported across closure but not
// declared. A unit importing itself never counts.
func DiffInternal(closure pyimport.Imports, declared names.Set) names.Set {
	imported := names.New(0)
	for key, units := range closure {
		imported.Merge(units.Without(key))
	}
	return imported.Diff(declared)
}
