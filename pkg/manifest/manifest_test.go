package manifest

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/una/pkg/errors"
)

const samplePyproject = `[project]
name = "printer"
version = "0.1.0"
dependencies = ["fastapi~=0.109.2", "uvicorn[standard]>=0.27", "greeter"]
requires-python = ">=3.11"

[project.optional-dependencies]
test = ["pytest>=8"]
aws = ["boto3"]

[tool.uv.sources]
greeter = { workspace = true }
other = { git = "https://example.com/other.git" }

[tool.una]
fuzzy-cutoff = 0.8

[tool.una.deps]
"../../libs/greeter/ns/greeter" = "ns/greeter"
`

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, samplePyproject)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Project.Name != "printer" {
		t.Errorf("Name = %q", m.Project.Name)
	}
	if m.Project.RequiresPython != ">=3.11" {
		t.Errorf("RequiresPython = %q", m.Project.RequiresPython)
	}
	if m.Dir() != dir {
		t.Errorf("Dir = %q, want %q", m.Dir(), dir)
	}
	if got := m.Table(TableDeps)["../../libs/greeter/ns/greeter"]; got != "ns/greeter" {
		t.Errorf("deps entry = %q", got)
	}
	if got := m.WorkspaceSources().Sorted(); !slices.Equal(got, []string{"greeter"}) {
		t.Errorf("WorkspaceSources = %v", got)
	}
	if v, ok := m.ToolTable("una")["fuzzy-cutoff"].(float64); !ok || v != 0.8 {
		t.Errorf("ToolTable fuzzy-cutoff = %v", m.ToolTable("una")["fuzzy-cutoff"])
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(t.TempDir())
		if !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("err = %v, want NOT_FOUND", err)
		}
	})

	t.Run("invalid toml", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, "[project\nname=")
		_, err := Load(dir)
		if !errors.Is(err, errors.ErrCodeInvalidManifest) {
			t.Errorf("err = %v, want INVALID_MANIFEST", err)
		}
	})
}

func TestRequire(t *testing.T) {
	m, err := Parse([]byte(samplePyproject))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Require("tool", "una", "deps"); err != nil {
		t.Errorf("Require(deps) = %v", err)
	}
	err = m.Require("tool", "una", "libs")
	if !errors.Is(err, errors.ErrCodeConfig) {
		t.Errorf("Require(libs) = %v, want CONFIG error", err)
	}
}

func TestRequirementsMergesOptionalGroups(t *testing.T) {
	m, err := Parse([]byte(samplePyproject))
	if err != nil {
		t.Fatal(err)
	}
	got := Names(m.Requirements())
	want := []string{"fastapi", "uvicorn[standard]", "greeter", "boto3", "pytest"}
	if !slices.Equal(got, want) {
		t.Errorf("Requirements names = %v, want %v", got, want)
	}
}

func TestCacheInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[project]\nname = \"a\"\n")

	c := NewCache(0)
	m1, err := c.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	m2, _ := c.Load(path)
	if m1 != m2 {
		t.Error("directory and file path should share a cache entry")
	}

	writeManifest(t, dir, "[project]\nname = \"b\"\n")
	if m, _ := c.Load(dir); m.Project.Name != "a" {
		t.Errorf("cached name = %q, want a", m.Project.Name)
	}

	c.Invalidate(path)
	m3, err := c.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m3.Project.Name != "b" {
		t.Errorf("name after Invalidate = %q, want b", m3.Project.Name)
	}
}
