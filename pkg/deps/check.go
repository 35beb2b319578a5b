package deps

import (
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/una/pkg/dist"
	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/names"
	"github.com/matzehuels/una/pkg/observability"
	"github.com/matzehuels/una/pkg/pyimport"
	"github.com/matzehuels/una/pkg/stdlib"
	"github.com/matzehuels/una/pkg/workspace"
)

// Report is the reconciliation result for one package.
type Report struct {
	Package *workspace.Package

	// Internal and External are the imported names the package does not
	// declare.
	Internal names.Set
	External names.Set

	// InternalImports maps every scanned unit to the internal names it
	// imports; ExternalImports maps the package's own roots to their
	// third-party imports.
	InternalImports pyimport.Imports
	ExternalImports pyimport.Imports
}

// Empty reports whether nothing is missing.
func (r *Report) Empty() bool {
	return r.Internal.Len() == 0 && r.External.Len() == 0
}

// Importers returns the keys of imports whose set contains name, sorted.
func Importers(imports pyimport.Imports, name string) []string {
	out := names.New(0)
	for k, v := range imports {
		if v.Has(name) {
			out.Add(k)
		}
	}
	return out.Sorted()
}

// Checker builds reports for the packages of one workspace.
type Checker struct {
	Workspace *workspace.Workspace
	Extractor *pyimport.Extractor
	Dist      *dist.Resolver
	Stdlib    names.Set
	Matcher   Matcher
	Aliases   []string
	Logger    *log.Logger
}

// NewChecker returns a checker configured from the workspace settings. idx
// may be nil when no site-packages directory is available.
func NewChecker(ws *workspace.Workspace, idx *dist.Index) *Checker {
	cutoff := ws.Settings.FuzzyCutoff
	if cutoff <= 0 {
		cutoff = workspace.DefaultFuzzyCutoff
	}
	return &Checker{
		Workspace: ws,
		Extractor: pyimport.NewExtractor(0),
		Dist:      &dist.Resolver{Index: idx, Logger: ws.Logger},
		Stdlib:    stdlib.Modules(PythonVersion(ws.Settings)),
		Matcher:   Matcher{Cutoff: cutoff},
		Aliases:   ws.Settings.Aliases,
		Logger:    ws.Logger,
	}
}

// PythonVersion picks the interpreter version whose standard library is
// excluded: the configured version, else the one of the site-packages in
// use, else [stdlib.Default].
func PythonVersion(s workspace.Settings) stdlib.Version {
	if v, ok := stdlib.ParseVersion(s.PythonVersion); ok {
		return v
	}
	if s.SitePackages != "" {
		if v, ok := stdlib.Detect(s.SitePackages); ok {
			return v
		}
	}
	return stdlib.Default
}

// Check reconciles one package. Declared internal paths that do not exist
// are reported together in a [errors.MissingPathsError].
func (c *Checker) Check(pkg *workspace.Package) (*Report, error) {
	ws := c.Workspace
	if err := c.missingPaths(pkg); err != nil {
		return nil, err
	}

	roots := ws.IncludedRoots(pkg)
	resolver := &Resolver{
		Namespace: ws.Namespace,
		Extractor: c.Extractor,
		Locator:   ws,
		Logger:    c.Logger,
	}
	internal, err := resolver.DiscoverInternal(roots)
	if err != nil {
		return nil, err
	}

	all, err := c.Extractor.FetchAll(ws.Style.ExternalRoots(ws, pkg, roots))
	if err != nil {
		return nil, err
	}
	external := ExternalImports(all, ws.Namespace, c.Stdlib)

	known, err := c.Dist.KnownNames(pkg.External, c.Aliases, pkg.FromLockFile())
	if err != nil {
		return nil, err
	}

	report := &Report{
		Package:         pkg,
		Internal:        DiffInternal(internal, ws.DeclaredInternal(pkg)),
		External:        c.Matcher.DiffExternal(external, known),
		InternalImports: internal,
		ExternalImports: external,
	}
	if c.Logger != nil {
		c.Logger.Debug("checked package", "package", pkg.Name, "roots", len(roots),
			"missing_internal", report.Internal.Len(), "missing_external", report.External.Len())
	}
	return report, nil
}

// CheckAll checks every package before returning. Reports are returned for
// the packages that could be checked; errors of the others are joined.
func (c *Checker) CheckAll(pkgs []*workspace.Package) ([]*Report, error) {
	reports := make([]*Report, 0, len(pkgs))
	var errs []error
	hooks := observability.Check()
	for _, pkg := range pkgs {
		hooks.OnCheckStart(pkg.Name)
		start := time.Now()
		r, err := c.Check(pkg)
		if r != nil {
			hooks.OnCheckComplete(pkg.Name, r.Internal.Len(), r.External.Len(), time.Since(start), nil)
		} else {
			hooks.OnCheckComplete(pkg.Name, 0, 0, time.Since(start), err)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reports = append(reports, r)
	}
	return reports, errors.Join(errs...)
}

func (c *Checker) missingPaths(pkg *workspace.Package) error {
	var missing []string
	for _, e := range pkg.Internal {
		if _, err := os.Stat(filepath.Join(pkg.Dir, filepath.FromSlash(e.Src))); os.IsNotExist(err) {
			missing = append(missing, e.Src)
		}
	}
	if len(missing) > 0 {
		return &errors.MissingPathsError{Package: pkg.Name, Paths: missing}
	}
	return nil
}
