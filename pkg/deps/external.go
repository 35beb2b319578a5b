package deps

import (
	"strings"

	"github.com/matzehuels/una/pkg/names"
	"github.com/matzehuels/una/pkg/pyimport"
)

// ExternalImports reduces every import to its top-level name and removes
// standard library modules and the namespace. Keys left empty are dropped.
func ExternalImports(all pyimport.Imports, ns string, std names.Set) pyimport.Imports {
	out := make(pyimport.Imports, len(all))
	for key, imports := range all {
		tops := names.New(imports.Len())
		for imp := range imports {
			top, _, _ := strings.Cut(imp, ".")
			if top != ns && !std.Has(top) {
				tops.Add(top)
			}
		}
		if tops.Len() > 0 {
			out[key] = tops
		}
	}
	return out
}

// Only returns the entries of m whose key is in keys.
func Only(m pyimport.Imports, keys names.Set) pyimport.Imports {
	out := make(pyimport.Imports, len(keys))
	for k, v := range m {
		if keys.Has(k) {
			out[k] = v
		}
	}
	return out
}
