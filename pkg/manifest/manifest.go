// Package manifest reads and edits pyproject.toml files.
//
// A manifest has two representations that are kept deliberately apart:
//
//   - [Manifest] is the typed view used by all logic. It is decoded with
//     BurntSushi/toml into explicit structs, and callers ask for required
//     tables through [Manifest.Require], which returns a configuration error
//     naming the missing table.
//   - [Document] is the raw text used for edits. It is changed with small
//     line-level insertions so comments, ordering and formatting of
//     everything una does not touch survive a rewrite byte for byte.
//
// After writing a Document, callers must invalidate the [Cache] entry for the
// same path so later reads in the run observe the change.
package manifest

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/names"
)

// FileName is the manifest file name in every package and the workspace root.
const FileName = "pyproject.toml"

// Manifest is the typed view of a pyproject.toml file.
type Manifest struct {
	Path    string  `toml:"-"`
	Project Project `toml:"project"`
	Tool    Tool    `toml:"tool"`

	meta toml.MetaData
	raw  map[string]any
}

// Project is the PEP 621 [project] table.
type Project struct {
	Name                 string              `toml:"name"`
	Version              string              `toml:"version"`
	Dependencies         []string            `toml:"dependencies"`
	OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	RequiresPython       string              `toml:"requires-python"`
}

// Tool holds the [tool.*] tables una reads.
type Tool struct {
	Una Una `toml:"una"`
	UV  UV  `toml:"uv"`
}

// Una is the [tool.una] table. Settings beyond the fields below are read
// through [Manifest.ToolTable].
type Una struct {
	Namespace string   `toml:"namespace"`
	Style     string   `toml:"style"`
	Members   []string `toml:"members"`

	// Deps and Libs map an internal dependency's source path, relative to
	// the package directory, to its destination import path.
	Deps map[string]string `toml:"deps"`
	Libs map[string]string `toml:"libs"`
}

// UV is the subset of [tool.uv] una understands.
type UV struct {
	Workspace UVWorkspace         `toml:"workspace"`
	Sources   map[string]UVSource `toml:"sources"`
}

// UVWorkspace is [tool.uv.workspace].
type UVWorkspace struct {
	Members []string `toml:"members"`
}

// UVSource is one entry of [tool.uv.sources].
type UVSource struct {
	Workspace bool `toml:"workspace"`
}

// Load reads and decodes the manifest at path. If path is a directory, the
// pyproject.toml inside it is loaded.
func Load(path string) (*Manifest, error) {
	path = resolvePath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "no %s at %s", FileName, filepath.Dir(path))
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	m.Path = path
	return m, nil
}

// Parse decodes manifest content. Path is left empty.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, err
	}
	m.meta = md
	m.raw = raw
	return &m, nil
}

// Dir returns the directory containing the manifest.
func (m *Manifest) Dir() string { return filepath.Dir(m.Path) }

// Defined reports whether the dotted table or key exists in the file,
// for example Defined("tool", "una", "deps").
func (m *Manifest) Defined(keys ...string) bool {
	return m.meta.IsDefined(keys...)
}

// Require returns a configuration error if the dotted table is absent.
func (m *Manifest) Require(keys ...string) error {
	if m.Defined(keys...) {
		return nil
	}
	return errors.New(errors.ErrCodeConfig, "missing [%s] in %s", strings.Join(keys, "."), m.displayPath())
}

// ToolTable returns the raw [tool.<name>] table, or nil if absent.
func (m *Manifest) ToolTable(name string) map[string]any {
	tool, _ := m.raw["tool"].(map[string]any)
	table, _ := tool[name].(map[string]any)
	return table
}

// Requirements returns the declared external dependencies, with every
// optional-dependencies group merged into the main list.
func (m *Manifest) Requirements() []Requirement {
	out := make([]Requirement, 0, len(m.Project.Dependencies))
	for _, d := range m.Project.Dependencies {
		out = append(out, ParseRequirement(d))
	}
	for _, group := range slices.Sorted(maps.Keys(m.Project.OptionalDependencies)) {
		for _, d := range m.Project.OptionalDependencies[group] {
			out = append(out, ParseRequirement(d))
		}
	}
	return out
}

// WorkspaceSources returns the names of [tool.uv.sources] entries marked
// workspace = true.
func (m *Manifest) WorkspaceSources() names.Set {
	out := names.New(len(m.Tool.UV.Sources))
	for name, src := range m.Tool.UV.Sources {
		if src.Workspace {
			out.Add(name)
		}
	}
	return out
}

// Table returns the internal-dependency entries stored in the dotted table
// name ("tool.una.deps" or "tool.una.libs").
func (m *Manifest) Table(name string) map[string]string {
	switch name {
	case TableDeps:
		return m.Tool.Una.Deps
	case TableLibs:
		return m.Tool.Una.Libs
	}
	return nil
}

// Internal dependency tables.
const (
	TableDeps = "tool.una.deps"
	TableLibs = "tool.una.libs"
)

func (m *Manifest) displayPath() string {
	if m.Path == "" {
		return FileName
	}
	return m.Path
}

func resolvePath(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, FileName)
	}
	return path
}
