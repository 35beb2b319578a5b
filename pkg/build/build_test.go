package build

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/workspace"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func openPackage(t *testing.T, name string, extra map[string]string) (*workspace.Workspace, *workspace.Package) {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		".git/HEAD":      "ref: refs/heads/main\n",
		"pyproject.toml": "[project]\nname = \"my-ns\"\n",
		"libs/greeter/pyproject.toml": `[project]
name = "greeter"
dependencies = ["cowsay-python == 1.0.2"]
`,
		"libs/greeter/my_ns/greeter/__init__.py":                  "import cowsay\n",
		"libs/greeter/my_ns/greeter/core.py":                      "",
		"libs/greeter/my_ns/greeter/__pycache__/core.cpython.pyc": "",
		"libs/greeter/my_ns/greeter/stale.pyc":                    "",
		"apps/printer/pyproject.toml": `[project]
name = "printer"
dependencies = ["fastapi >= 1", "cowsay-python==1.0.2"]

[tool.una.deps]
"../../libs/greeter/my_ns/greeter" = "my_ns/greeter"
`,
		"apps/printer/my_ns/printer/__init__.py": "from my_ns import greeter\n",
	}
	for k, v := range extra {
		files[k] = v
	}
	writeTree(t, root, files)

	ws, err := workspace.Discover(root, workspace.NewViper(), nil, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	pkg, ok, err := ws.Package(name)
	if err != nil || !ok {
		t.Fatalf("Package(%s) = %v, %v", name, ok, err)
	}
	return ws, pkg
}

func TestForceInclude(t *testing.T) {
	ws, pkg := openPackage(t, "printer", nil)

	got, err := ForceInclude(ws, pkg)
	if err != nil {
		t.Fatalf("ForceInclude: %v", err)
	}
	want := map[string]string{
		"../../libs/greeter/my_ns/greeter/__init__.py": "my_ns/greeter/__init__.py",
		"../../libs/greeter/my_ns/greeter/core.py":     "my_ns/greeter/core.py",
		"../../libs/greeter/pyproject.toml":            "_extra_pyproj/greeter/pyproject.toml",
		"../../pyproject.toml":                         "_extra_pyproj/_root/pyproject.toml",
	}
	if len(got) != len(want) {
		t.Errorf("got %d files, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ForceInclude[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestForceIncludeFromSdist(t *testing.T) {
	ws, pkg := openPackage(t, "printer", map[string]string{
		"apps/printer/PKG-INFO": "Metadata-Version: 2.1\nName: printer\n",
	})
	got, err := ForceInclude(ws, pkg)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("ForceInclude = %v, want empty", got)
	}
}

func TestForceIncludeMissingPaths(t *testing.T) {
	ws, pkg := openPackage(t, "printer", map[string]string{
		"apps/printer/pyproject.toml": `[project]
name = "printer"

[tool.una.deps]
"../../libs/ghost/my_ns/ghost" = "my_ns/ghost"
"../../libs/greeter/my_ns/greeter" = "my_ns/greeter"
"../../libs/phantom/my_ns/phantom" = "my_ns/phantom"
`,
	})
	_, err := ForceInclude(ws, pkg)
	var missing *errors.MissingPathsError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingPathsError", err)
	}
	want := []string{"../../libs/ghost/my_ns/ghost", "../../libs/phantom/my_ns/phantom"}
	if !slices.Equal(missing.Paths, want) {
		t.Errorf("Paths = %v, want %v", missing.Paths, want)
	}
}

func TestForceIncludeMissingTable(t *testing.T) {
	ws, pkg := openPackage(t, "greeter", nil)
	_, err := ForceInclude(ws, pkg)
	if !errors.Is(err, errors.ErrCodeConfig) {
		t.Errorf("err = %v, want CONFIG", err)
	}
}

func TestDependencies(t *testing.T) {
	ws, pkg := openPackage(t, "printer", nil)
	got, err := Dependencies(ws, pkg)
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	want := []string{"cowsay-python==1.0.2", "fastapi>=1"}
	if !slices.Equal(got, want) {
		t.Errorf("Dependencies = %v, want %v", got, want)
	}
}

func TestDependenciesFromExtraDir(t *testing.T) {
	ws, pkg := openPackage(t, "printer", map[string]string{
		"apps/printer/pyproject.toml": `[project]
name = "printer"

[tool.una.deps]
"../../libs/gone/my_ns/gone" = "my_ns/gone"
`,
		"apps/printer/_extra_pyproj/gone/pyproject.toml": "[project]\nname = \"gone\"\ndependencies = [\"rich\"]\n",
	})
	got, err := Dependencies(ws, pkg)
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	if !slices.Equal(got, []string{"rich"}) {
		t.Errorf("Dependencies = %v", got)
	}
}

func TestDependenciesErrors(t *testing.T) {
	t.Run("missing table", func(t *testing.T) {
		ws, pkg := openPackage(t, "greeter", nil)
		_, err := Dependencies(ws, pkg)
		if !errors.Is(err, errors.ErrCodeConfig) {
			t.Errorf("err = %v, want CONFIG", err)
		}
	})

	t.Run("modules style", func(t *testing.T) {
		ws, pkg := openPackage(t, "printer", nil)
		ws.Style, _ = workspace.NewStyle(workspace.StyleModules)
		_, err := Dependencies(ws, pkg)
		if !errors.Is(err, errors.ErrCodeConfig) {
			t.Errorf("err = %v, want CONFIG", err)
		}
	})

	t.Run("dependency not found", func(t *testing.T) {
		ws, pkg := openPackage(t, "printer", map[string]string{
			"apps/printer/pyproject.toml": "[project]\nname = \"printer\"\n\n[tool.una.deps]\n\"../nowhere/x\" = \"my_ns/x\"\n",
		})
		_, err := Dependencies(ws, pkg)
		if !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("err = %v, want NOT_FOUND", err)
		}
	})
}

func TestCompute(t *testing.T) {
	ws, pkg := openPackage(t, "printer", nil)
	d, err := Compute(ws, pkg)
	if err != nil {
		t.Fatal(err)
	}
	if d.Package != "printer" || d.Style != workspace.StylePackages {
		t.Errorf("Data = %+v", d)
	}
	if len(d.ForceInclude) == 0 || len(d.Dependencies) != 2 {
		t.Errorf("Data = %+v", d)
	}
}

func TestParents(t *testing.T) {
	if got := parents("../../libs/greeter/ns/greeter", 1); got != "../../libs/greeter" {
		t.Errorf("parents = %q", got)
	}
	if got := parents("a/b", 0); got != "a" {
		t.Errorf("parents = %q", got)
	}
}

func TestOpenSdist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "printer-0.1.0")
	writeTree(t, dir, map[string]string{
		"PKG-INFO": "Metadata-Version: 2.1\nName: printer\n",
		"pyproject.toml": `[project]
name = "printer"
dependencies = ["fastapi>=1"]

[tool.una.deps]
"../../libs/greeter/my_ns/greeter" = "my_ns/greeter"
`,
		"my_ns/printer/__init__.py":            "",
		"my_ns/greeter/__init__.py":            "",
		"_extra_pyproj/greeter/pyproject.toml": "[project]\nname = \"greeter\"\ndependencies = [\"cowsay-python==1.0.2\"]\n",
		"_extra_pyproj/_root/pyproject.toml":   "[project]\nname = \"my-ns\"\n",
	})

	ws, pkg, err := OpenSdist(dir, workspace.NewViper(), nil)
	if err != nil {
		t.Fatalf("OpenSdist: %v", err)
	}
	if ws.Namespace != "my_ns" {
		t.Errorf("Namespace = %q, want my_ns", ws.Namespace)
	}
	if pkg.Name != "printer" {
		t.Errorf("Name = %q, want printer", pkg.Name)
	}

	data, err := Compute(ws, pkg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(data.ForceInclude) != 0 {
		t.Errorf("ForceInclude = %v, want empty", data.ForceInclude)
	}
	want := []string{"cowsay-python==1.0.2", "fastapi>=1"}
	if !slices.Equal(data.Dependencies, want) {
		t.Errorf("Dependencies = %v, want %v", data.Dependencies, want)
	}
}

func TestOpenSdistErrors(t *testing.T) {
	t.Run("not an sdist", func(t *testing.T) {
		_, _, err := OpenSdist(t.TempDir(), workspace.NewViper(), nil)
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("err = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("no workspace manifest", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{
			"PKG-INFO":       "",
			"pyproject.toml": "[project]\nname = \"printer\"\n",
		})
		_, _, err := OpenSdist(dir, workspace.NewViper(), nil)
		if !errors.Is(err, errors.ErrCodeConfig) {
			t.Errorf("err = %v, want CONFIG", err)
		}
	})
}
