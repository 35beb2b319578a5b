// Package workspace models a una monorepo: its root, namespace, layout
// style and member packages.
//
// A workspace is rooted at the first ancestor directory containing .git.
// Packages are the member directories (matched by glob against the root)
// that contain a pyproject.toml. Every package shares one namespace, so
// importing ns.greeter from anywhere in the workspace refers to the
// package or module named greeter.
package workspace

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/manifest"
)

// RootMarker is the entry whose presence marks the workspace root.
const RootMarker = ".git"

// Workspace is an opened una workspace. Packages are discovered on first
// use and kept for the lifetime of the value.
type Workspace struct {
	Root      string
	Namespace string
	Style     Style
	Members   []string
	Settings  Settings
	Cache     *manifest.Cache
	Logger    *log.Logger

	packages []*Package
	units    map[string]string
}

// FindRoot walks upward from cwd to the first directory containing .git.
func FindRoot(cwd string) (string, error) {
	dir, err := filepath.Abs(cwd)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "resolve %s", cwd)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, RootMarker)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.ErrCodeNotFound, "didn't find the workspace root, expected to find a %s directory", RootMarker)
		}
		dir = parent
	}
}

// Discover finds the workspace containing cwd, layers the root manifest's
// [tool.una] table into v, and opens it.
func Discover(cwd string, v *viper.Viper, cache *manifest.Cache, logger *log.Logger) (*Workspace, error) {
	root, err := FindRoot(cwd)
	if err != nil {
		return nil, err
	}
	if cache == nil {
		cache = manifest.NewCache(0)
	}
	rootManifest, err := cache.Load(root)
	if err != nil && !errors.Is(err, errors.ErrCodeNotFound) {
		return nil, err
	}
	settings, err := LoadSettings(v, rootManifest)
	if err != nil {
		return nil, err
	}
	return Open(root, settings, cache, logger)
}

// Open builds a workspace rooted at root. The namespace comes from
// settings, else from the root project name with "-" replaced by "_".
// Members come from settings, else [tool.uv.workspace] members, else the
// style's default layout.
func Open(root string, settings Settings, cache *manifest.Cache, logger *log.Logger) (*Workspace, error) {
	if cache == nil {
		cache = manifest.NewCache(0)
	}
	if logger == nil {
		logger = log.New(os.Stderr)
		logger.SetLevel(log.WarnLevel)
	}
	rootManifest, err := cache.Load(root)
	if err != nil && !errors.Is(err, errors.ErrCodeNotFound) {
		return nil, err
	}

	style, err := NewStyle(settings.Style)
	if err != nil {
		return nil, err
	}

	ns := settings.Namespace
	if ns == "" && rootManifest != nil {
		ns = rootManifest.Tool.Una.Namespace
	}
	if ns == "" && rootManifest != nil && rootManifest.Project.Name != "" {
		ns = strings.ReplaceAll(rootManifest.Project.Name, "-", "_")
	}
	if ns == "" {
		return nil, errors.New(errors.ErrCodeConfig, "no namespace: set [tool.una] namespace or [project] name in %s", filepath.Join(root, manifest.FileName))
	}
	if err := errors.ValidatePackageName(ns); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "invalid namespace")
	}

	members := settings.Members
	if len(members) == 0 && rootManifest != nil {
		members = rootManifest.Tool.UV.Workspace.Members
	}
	if len(members) == 0 {
		members = style.DefaultMembers()
	}

	return &Workspace{
		Root:      root,
		Namespace: ns,
		Style:     style,
		Members:   members,
		Settings:  settings,
		Cache:     cache,
		Logger:    logger,
	}, nil
}

// Packages returns every member package, sorted by name. Two members with
// the same directory name are a configuration error.
func (ws *Workspace) Packages() ([]*Package, error) {
	if ws.packages != nil {
		return ws.packages, nil
	}
	dirs, err := ws.memberDirs()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(dirs))
	pkgs := make([]*Package, 0, len(dirs))
	for _, dir := range dirs {
		pkg, err := ws.LoadPackage(dir)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[pkg.Name]; ok {
			return nil, errors.New(errors.ErrCodeConfig, "duplicate package name %q in %s and %s", pkg.Name, prev, dir)
		}
		seen[pkg.Name] = dir
		pkgs = append(pkgs, pkg)
	}
	slices.SortFunc(pkgs, func(a, b *Package) int { return strings.Compare(a.Name, b.Name) })
	ws.Logger.Debug("discovered packages", "count", len(pkgs), "members", ws.Members)
	ws.packages = pkgs
	return pkgs, nil
}

// Package returns the member package with the given name.
func (ws *Workspace) Package(name string) (*Package, bool, error) {
	pkgs, err := ws.Packages()
	if err != nil {
		return nil, false, err
	}
	for _, p := range pkgs {
		if p.Name == name {
			return p, true, nil
		}
	}
	return nil, false, nil
}

// Local returns the packages in the cwd subtree: every package at the
// root, the packages below cwd, or the package containing cwd.
func (ws *Workspace) Local(cwd string) ([]*Package, error) {
	pkgs, err := ws.Packages()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "resolve %s", cwd)
	}
	var out []*Package
	for _, p := range pkgs {
		if within(p.Dir, abs) || within(abs, p.Dir) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Units returns the internal dependency universe: unit name to source root.
func (ws *Workspace) Units() (map[string]string, error) {
	if ws.units != nil {
		return ws.units, nil
	}
	units, err := ws.Style.Units(ws)
	if err != nil {
		return nil, err
	}
	ws.units = units
	return units, nil
}

// Locate returns the source root of the unit called name.
func (ws *Workspace) Locate(name string) (string, bool) {
	units, err := ws.Units()
	if err != nil {
		return "", false
	}
	root, ok := units[name]
	return root, ok
}

// Refresh forgets discovered packages so the next call re-reads manifests.
func (ws *Workspace) Refresh() {
	ws.packages = nil
	ws.units = nil
}

func (ws *Workspace) memberDirs() ([]string, error) {
	fsys := os.DirFS(ws.Root)
	found := make(map[string]struct{})
	for _, pattern := range ws.Members {
		pattern = strings.TrimSuffix(filepath.ToSlash(pattern), "/")
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.New(errors.ErrCodeConfig, "invalid member glob %q", pattern)
		}
		// A member is a matched directory holding a manifest.
		matches, err := doublestar.Glob(fsys, pattern+"/"+manifest.FileName, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfig, err, "invalid member glob %q", pattern)
		}
		for _, m := range matches {
			dir := filepath.Dir(filepath.FromSlash(m))
			if dir == "." {
				continue
			}
			found[filepath.Join(ws.Root, dir)] = struct{}{}
		}
	}
	dirs := make([]string, 0, len(found))
	for d := range found {
		dirs = append(dirs, d)
	}
	slices.Sort(dirs)
	return dirs, nil
}

// KindOf classifies a directory by the top-level workspace directory it
// lives in: apps, libs, or anything else.
func (ws *Workspace) KindOf(dir string) Kind {
	rel, err := filepath.Rel(ws.Root, dir)
	if err != nil {
		return KindPackage
	}
	top, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	switch top {
	case "apps":
		return KindApp
	case "libs":
		return KindLib
	}
	return KindPackage
}

func within(dir, parent string) bool {
	rel, err := filepath.Rel(parent, dir)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
