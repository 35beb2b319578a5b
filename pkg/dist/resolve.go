package dist

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/una/pkg/manifest"
	"github.com/matzehuels/una/pkg/names"
)

// Resolver computes the import names covered by a package's declared
// external dependencies.
type Resolver struct {
	Index   *Index
	Aliases map[string][]string // curated aliases; nil means KnownAliases
	Logger  *log.Logger
}

// KnownNames returns every name an import may match for the declared
// requirements to count as satisfied. userAliases are "dist=import,..."
// declarations. When the requirements come from a lock file, the
// sub-dependencies of declared distributions are not added since the lock
// file already lists them.
func (r *Resolver) KnownNames(declared []manifest.Requirement, userAliases []string, fromLockFile bool) (names.Set, error) {
	custom, err := ParseAliases(userAliases)
	if err != nil {
		return nil, err
	}
	curated := r.Aliases
	if curated == nil {
		curated = KnownAliases
	}
	idx := r.Index
	if idx == nil {
		idx = &Index{}
	}

	libs := ExtrasNames(declared)
	known := libs.Union(
		PickAliases(idx.Packages(), libs),
		PickAliases(curated, libs),
		PickAliases(custom, libs),
		r.packagesDistributions(idx, libs),
	)
	if !fromLockFile {
		known.Merge(PickAliases(idx.SubPackages(), libs))
	}
	if r.Logger != nil {
		r.Logger.Debug("resolved known names", "declared", libs.Len(), "known", known.Len())
	}
	return known, nil
}

// packagesDistributions returns import names provided by any declared
// distribution, excluding the declared names themselves.
func (r *Resolver) packagesDistributions(idx *Index, libs names.Set) names.Set {
	wanted := libs.Map(Normalize)
	out := names.New(0)
	for pkg, dists := range idx.PackagesDistributions() {
		for _, d := range dists {
			if wanted.Has(Normalize(d)) {
				out.Add(pkg)
				break
			}
		}
	}
	return out.Diff(libs)
}
