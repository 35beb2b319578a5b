package workspace

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/manifest"
	"github.com/matzehuels/una/pkg/names"
)

// Kind classifies a package by its top-level member directory. It is used
// for display and for grouping changed packages only.
type Kind string

const (
	KindApp     Kind = "app"
	KindLib     Kind = "lib"
	KindPackage Kind = "package"
)

// Package is one workspace member.
type Package struct {
	Name     string
	Dir      string
	Kind     Kind
	Manifest *manifest.Manifest
	Internal []manifest.Entry // declared internal dependencies, sorted by Src
	External []manifest.Requirement
	Source   string // file the External list was read from
}

// FromLockFile reports whether the external dependencies came from a lock
// file rather than the manifest.
func (p *Package) FromLockFile() bool {
	return filepath.Base(p.Source) == manifest.LockFileName
}

// RefName returns the unit name an entry refers to: the last segment of the
// destination ("ns/greeter" → greeter), or of the source path if the
// destination is empty.
func RefName(e manifest.Entry) string {
	ref := e.Dst
	if ref == "" {
		ref = e.Src
	}
	return path.Base(strings.TrimSuffix(filepath.ToSlash(ref), "/"))
}

// DeclaredInternal returns the names pkg declares as internal dependencies:
// its table entries, its uv workspace sources and, when the style counts a
// package as its own unit, the package itself.
func (ws *Workspace) DeclaredInternal(pkg *Package) names.Set {
	out := names.New(len(pkg.Internal) + 1)
	for _, e := range pkg.Internal {
		out.Add(RefName(e))
	}
	out.Merge(pkg.Manifest.WorkspaceSources())
	if ws.Style.IncludesSelf() {
		out.Add(pkg.Name)
	}
	return out
}

// IncludedRoots returns the source roots pkg is built from: the declared
// entries resolved against the package directory, uv workspace sources
// located in the workspace, and the package's own root.
func (ws *Workspace) IncludedRoots(pkg *Package) []string {
	var roots []string
	add := func(r string) {
		if r != "" && !slices.Contains(roots, r) {
			roots = append(roots, r)
		}
	}
	if ws.Style.IncludesSelf() {
		add(ws.Style.SourceRoot(ws, pkg))
	}
	for _, e := range pkg.Internal {
		add(filepath.Clean(filepath.Join(pkg.Dir, filepath.FromSlash(e.Src))))
	}
	for _, name := range pkg.Manifest.WorkspaceSources().Sorted() {
		if root, ok := ws.Locate(name); ok {
			add(root)
		}
	}
	return roots
}

// LoadPackage reads the package whose manifest lives in dir. It does not
// need to be a member of ws.
func (ws *Workspace) LoadPackage(dir string) (*Package, error) {
	m, err := ws.Cache.Load(dir)
	if err != nil {
		return nil, err
	}
	pkg := &Package{
		Name:     filepath.Base(dir),
		Dir:      dir,
		Kind:     ws.KindOf(dir),
		Manifest: m,
		Source:   m.Path,
	}

	table := m.Table(ws.Style.Table())
	for src, dst := range table {
		pkg.Internal = append(pkg.Internal, manifest.Entry{Src: src, Dst: dst})
	}
	slices.SortFunc(pkg.Internal, func(a, b manifest.Entry) int { return strings.Compare(a.Src, b.Src) })

	pkg.External = m.Requirements()
	lock := filepath.Join(dir, manifest.LockFileName)
	if _, err := os.Stat(lock); err == nil {
		reqs, err := manifest.ReadLockFile(lock)
		if err != nil {
			// An unreadable lock file falls back to the declared dependencies.
			ws.Logger.Warn("ignoring lock file", "path", lock, "err", errors.UserMessage(err))
			return pkg, nil
		}
		pkg.External = reqs
		pkg.Source = lock
	}
	return pkg, nil
}
