// Package build computes the data a Python build backend needs to package
// a workspace member on its own: the files of its internal dependencies
// that must be force-included in the artifact, and the external
// dependencies those internal dependencies bring along.
//
// Build hooks for hatch and pdm consume the result through
// "una build-data", which prints a [Data] as JSON.
package build

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/manifest"
	"github.com/matzehuels/una/pkg/names"
	"github.com/matzehuels/una/pkg/workspace"
)

const (
	// ExtraDir holds copies of dependency manifests inside an sdist, so a
	// wheel built from that sdist can still read their dependencies.
	ExtraDir = "_extra_pyproj"
	// RootDir is the ExtraDir subdirectory holding the workspace manifest.
	RootDir = "_root"
	// SdistMarker exists only when building a wheel from an unpacked sdist.
	SdistMarker = "PKG-INFO"
)

// Data is the output of "una build-data".
type Data struct {
	Package      string            `json:"package"`
	Style        string            `json:"style"`
	ForceInclude map[string]string `json:"force_include"`
	Dependencies []string          `json:"dependencies,omitempty"`
}

// Compute gathers everything a build hook needs for pkg. Dependencies are
// only injected for the packages style; modules-style projects declare
// their external dependencies themselves.
func Compute(ws *workspace.Workspace, pkg *workspace.Package) (*Data, error) {
	files, err := ForceInclude(ws, pkg)
	if err != nil {
		return nil, err
	}
	d := &Data{Package: pkg.Name, Style: ws.Style.Name(), ForceInclude: files}
	if ws.Style.Name() == workspace.StylePackages {
		deps, err := Dependencies(ws, pkg)
		if err != nil {
			return nil, err
		}
		d.Dependencies = deps
	}
	return d, nil
}

// ForceInclude maps files on disk, relative to the package directory, to
// their path inside the built artifact. Every file below each internal
// dependency's source is mapped to dst/<rel>. In the packages style each
// dependency's manifest and the workspace manifest are added under
// [ExtraDir].
//
// It returns an empty map when building from an sdist, since the sdist
// already carries everything.
func ForceInclude(ws *workspace.Workspace, pkg *workspace.Package) (map[string]string, error) {
	out := make(map[string]string)
	if IsSdist(pkg.Dir) {
		return out, nil
	}
	table := ws.Style.Table()
	if err := pkg.Manifest.Require(strings.Split(table, ".")...); err != nil {
		return nil, err
	}
	if len(pkg.Internal) == 0 {
		if ws.Style.Name() == workspace.StylePackages {
			return out, nil
		}
		return nil, errors.New(errors.ErrCodeConfig, "project %q has no dependencies in [%s]", pkg.Name, table)
	}

	var missing []string
	for _, e := range pkg.Internal {
		if !exists(filepath.Join(pkg.Dir, filepath.FromSlash(e.Src))) {
			missing = append(missing, e.Src)
		}
	}
	if len(missing) > 0 {
		return nil, &errors.MissingPathsError{Package: pkg.Name, Paths: missing}
	}

	for _, e := range pkg.Internal {
		if err := addTree(out, pkg.Dir, e); err != nil {
			return nil, err
		}
		if ws.Style.Name() != workspace.StylePackages {
			continue
		}
		depManifest := path.Join(parents(e.Src, 1), manifest.FileName)
		if exists(filepath.Join(pkg.Dir, filepath.FromSlash(depManifest))) {
			out[depManifest] = path.Join(ExtraDir, path.Base(e.Src), manifest.FileName)
		}
	}

	if ws.Style.Name() == workspace.StylePackages {
		rootManifest := filepath.Join(ws.Root, manifest.FileName)
		if rel, err := filepath.Rel(pkg.Dir, rootManifest); err == nil && exists(rootManifest) {
			out[filepath.ToSlash(rel)] = path.Join(ExtraDir, RootDir, manifest.FileName)
		}
	}
	return out, nil
}

// Dependencies returns the external requirements of pkg merged with those
// of every internal dependency it declares, whitespace removed, deduplicated
// and sorted. A dependency's manifest is read from its package directory,
// or from [ExtraDir] when building from an sdist.
func Dependencies(ws *workspace.Workspace, pkg *workspace.Package) ([]string, error) {
	if ws.Style.Name() == workspace.StyleModules {
		return nil, errors.New(errors.ErrCodeConfig, "dependency injection is not used with the %s style", workspace.StyleModules)
	}
	if err := pkg.Manifest.Require("tool", "una", "deps"); err != nil {
		return nil, err
	}

	all := names.New(0)
	for _, d := range pkg.Manifest.Project.Dependencies {
		all.Add(compact(d))
	}
	for _, e := range pkg.Internal {
		dir := filepath.Join(pkg.Dir, filepath.FromSlash(parents(e.Src, 1)))
		if !exists(filepath.Join(dir, manifest.FileName)) {
			dir = filepath.Join(pkg.Dir, ExtraDir, path.Base(e.Src))
		}
		if !exists(filepath.Join(dir, manifest.FileName)) {
			return nil, errors.New(errors.ErrCodeNotFound, "could not find internal dependency at %s", e.Src)
		}
		m, err := ws.Cache.Load(dir)
		if err != nil {
			return nil, err
		}
		if !m.Defined("project", "dependencies") {
			return nil, errors.New(errors.ErrCodeConfig, "missing [project] dependencies in %s", m.Path)
		}
		for _, d := range m.Project.Dependencies {
			all.Add(compact(d))
		}
	}
	delete(all, "")
	return all.Sorted(), nil
}

// addTree maps every file under the entry's source to its destination,
// skipping bytecode and tool caches.
func addTree(out map[string]string, dir string, e manifest.Entry) error {
	src := filepath.Join(dir, filepath.FromSlash(e.Src))
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "walk %s", p)
		}
		if d.IsDir() {
			if p != src && ignoredDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".pyc") {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if rel == "." {
			// single-module source
			out[e.Src] = e.Dst
			return nil
		}
		out[path.Join(e.Src, filepath.ToSlash(rel))] = path.Join(e.Dst, filepath.ToSlash(rel))
		return nil
	})
}

var ignoredDirs = []string{
	"__pycache__", ".venv", "__pypackages__", ".mypy_cache", ".pytest_cache", "node_modules", ".git",
}

func ignoredDir(name string) bool { return slices.Contains(ignoredDirs, name) }

// parents returns the directory n+1 levels above the slash-separated path p:
// parents("a/b/c", 1) == "a".
func parents(p string, n int) string {
	for range n + 1 {
		p = path.Dir(p)
	}
	return p
}

func compact(req string) string {
	return strings.ReplaceAll(strings.TrimSpace(req), " ", "")
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
