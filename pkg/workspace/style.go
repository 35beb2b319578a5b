package workspace

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/manifest"
)

// Style is a workspace layout. It decides where source trees live and which
// manifest table holds internal dependencies; it never changes how
// dependencies are compared.
//
// In the packages style every member is a unit with its code under
// <member>/<ns>/<name>, and members depend on each other through
// [tool.una.deps]. In the modules style code lives in shared trees
// (<root>/apps/<ns>/<name>, <root>/libs/<ns>/<name>) and members are thin
// projects that pick modules through [tool.una.libs].
type Style interface {
	Name() string
	// Table is the dotted manifest table holding internal dependencies.
	Table() string
	// IncludesSelf reports whether a package is itself a unit whose code
	// counts towards its own imports.
	IncludesSelf() bool
	// DefaultMembers are the member globs used when none are configured.
	DefaultMembers() []string
	// SourceRoot returns the package's own source root, or "" if it has none.
	SourceRoot(ws *Workspace, pkg *Package) string
	// Units maps every internal dependency name to its source root.
	Units(ws *Workspace) (map[string]string, error)
	// ExternalRoots returns the roots whose third-party imports the package
	// must declare, given the roots included in it.
	ExternalRoots(ws *Workspace, pkg *Package, included []string) []string
}

// NewStyle returns the style with the given name.
func NewStyle(name string) (Style, error) {
	switch name {
	case StylePackages, "":
		return packagesStyle{}, nil
	case StyleModules:
		return modulesStyle{}, nil
	}
	return nil, errors.New(errors.ErrCodeConfig, "unknown style %q", name)
}

// Entry builds the internal dependency entry for unit as seen from pkg:
// the unit's source root relative to the package directory, installed
// under ns/<unit>.
func (ws *Workspace) Entry(pkg *Package, unit string) (manifest.Entry, bool) {
	root, ok := ws.Locate(unit)
	if !ok {
		return manifest.Entry{}, false
	}
	rel, err := filepath.Rel(pkg.Dir, root)
	if err != nil {
		return manifest.Entry{}, false
	}
	return manifest.Entry{Src: filepath.ToSlash(rel), Dst: ws.Namespace + "/" + unit}, true
}

type packagesStyle struct{}

func (packagesStyle) Name() string             { return StylePackages }
func (packagesStyle) Table() string            { return manifest.TableDeps }
func (packagesStyle) IncludesSelf() bool       { return true }
func (packagesStyle) DefaultMembers() []string { return []string{"libs/*", "apps/*"} }

func (packagesStyle) SourceRoot(ws *Workspace, pkg *Package) string {
	return filepath.Join(pkg.Dir, ws.Namespace, pkg.Name)
}

func (s packagesStyle) Units(ws *Workspace) (map[string]string, error) {
	pkgs, err := ws.Packages()
	if err != nil {
		return nil, err
	}
	units := make(map[string]string, len(pkgs))
	for _, p := range pkgs {
		units[p.Name] = s.SourceRoot(ws, p)
	}
	return units, nil
}

func (s packagesStyle) ExternalRoots(ws *Workspace, pkg *Package, _ []string) []string {
	return []string{s.SourceRoot(ws, pkg)}
}

type modulesStyle struct{}

func (modulesStyle) Name() string             { return StyleModules }
func (modulesStyle) Table() string            { return manifest.TableLibs }
func (modulesStyle) IncludesSelf() bool       { return false }
func (modulesStyle) DefaultMembers() []string { return []string{"projects/*"} }

func (modulesStyle) SourceRoot(*Workspace, *Package) string { return "" }

// Units lists <root>/{apps,libs}/<ns>/*. A module may be a package
// directory or a single .py file.
func (modulesStyle) Units(ws *Workspace) (map[string]string, error) {
	units := make(map[string]string)
	for _, top := range []string{"apps", "libs"} {
		dir := filepath.Join(ws.Root, top, ws.Namespace)
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "list %s", dir)
		}
		for _, e := range entries {
			name := e.Name()
			switch {
			case e.IsDir() && name != "__pycache__" && name[0] != '.':
				units[name] = filepath.Join(dir, name)
			case !e.IsDir() && filepath.Ext(name) == ".py" && name != "__init__.py":
				units[name[:len(name)-3]] = filepath.Join(dir, name)
			}
		}
	}
	return units, nil
}

func (modulesStyle) ExternalRoots(_ *Workspace, _ *Package, included []string) []string {
	return slices.Clone(included)
}
