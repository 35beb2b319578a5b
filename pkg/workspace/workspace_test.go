package workspace

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/manifest"
)

func TestFindRoot(t *testing.T) {
	root := packagesWorkspace(t)

	got, err := FindRoot(filepath.Join(root, "apps", "printer", "my_ns"))
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	if got != root {
		t.Errorf("FindRoot = %q, want %q", got, root)
	}

	_, err = FindRoot(t.TempDir())
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("FindRoot without .git: err = %v, want NOT_FOUND", err)
	}
}

func TestOpenNamespace(t *testing.T) {
	tests := []struct {
		name     string
		rootToml string
		settings Settings
		want     string
		wantErr  bool
	}{
		{"from project name", "[project]\nname = \"my-ns\"\n", Settings{}, "my_ns", false},
		{"from tool.una", "[project]\nname = \"x\"\n[tool.una]\nnamespace = \"acme\"\n", Settings{}, "acme", false},
		{"from settings", "[project]\nname = \"x\"\n", Settings{Namespace: "override"}, "override", false},
		{"missing", "[tool.uv.workspace]\nmembers = []\n", Settings{}, "", true},
		{"invalid", "", Settings{Namespace: "not-valid"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, map[string]string{".git/": "", "pyproject.toml": tt.rootToml})
			ws, err := Open(root, tt.settings, nil, nil)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeConfig) {
					t.Errorf("err = %v, want CONFIG", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if ws.Namespace != tt.want {
				t.Errorf("Namespace = %q, want %q", ws.Namespace, tt.want)
			}
		})
	}
}

func TestOpenMembers(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pyproject.toml": "[project]\nname = \"ns\"\n[tool.uv.workspace]\nmembers = [\"packages/*\"]\n",
	})

	ws, err := Open(root, Settings{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ws.Members, []string{"packages/*"}) {
		t.Errorf("Members = %v, want uv workspace members", ws.Members)
	}

	ws, err = Open(root, Settings{Members: []string{"code/*"}}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ws.Members, []string{"code/*"}) {
		t.Errorf("Members = %v, want settings members", ws.Members)
	}

	writeTree(t, root, map[string]string{"pyproject.toml": "[project]\nname = \"ns\"\n"})
	ws, err = Open(root, Settings{Style: StyleModules}, manifest.NewCache(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ws.Members, []string{"projects/*"}) {
		t.Errorf("modules default members = %v", ws.Members)
	}
}

func TestPackages(t *testing.T) {
	root := packagesWorkspace(t)
	ws, err := Open(root, Settings{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	pkgs, err := ws.Packages()
	if err != nil {
		t.Fatalf("Packages: %v", err)
	}
	var got []string
	for _, p := range pkgs {
		got = append(got, p.Name+":"+string(p.Kind))
	}
	want := []string{"greeter:lib", "locked:app", "printer:app"}
	if !slices.Equal(got, want) {
		t.Fatalf("Packages = %v, want %v", got, want)
	}

	printer, ok, _ := ws.Package("printer")
	if !ok {
		t.Fatal("printer not found")
	}
	if len(printer.Internal) != 1 || printer.Internal[0].Dst != "my_ns/greeter" {
		t.Errorf("printer.Internal = %v", printer.Internal)
	}
	if got := ws.DeclaredInternal(printer).Sorted(); !slices.Equal(got, []string{"greeter", "printer"}) {
		t.Errorf("DeclaredInternal = %v", got)
	}
	wantRoots := []string{
		filepath.Join(root, "apps", "printer", "my_ns", "printer"),
		filepath.Join(root, "libs", "greeter", "my_ns", "greeter"),
	}
	if got := ws.IncludedRoots(printer); !slices.Equal(got, wantRoots) {
		t.Errorf("IncludedRoots = %v, want %v", got, wantRoots)
	}

	locked, _, _ := ws.Package("locked")
	if !locked.FromLockFile() {
		t.Error("locked should read its requirements.lock")
	}
	if names := manifest.Names(locked.External); !slices.Equal(names, []string{"anyio"}) {
		t.Errorf("locked.External = %v", names)
	}
}

func TestPackagesMalformedLockFile(t *testing.T) {
	root := packagesWorkspace(t)
	writeTree(t, root, map[string]string{"apps/locked/requirements.lock": "anyio>=4\n"})
	ws, err := Open(root, Settings{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	pkgs, err := ws.Packages()
	if err != nil {
		t.Fatalf("Packages: %v", err)
	}
	if len(pkgs) != 3 {
		t.Fatalf("got %d packages, want 3", len(pkgs))
	}
	locked, _, _ := ws.Package("locked")
	if locked.FromLockFile() {
		t.Error("malformed lock file should not be used")
	}
	if names := manifest.Names(locked.External); !slices.Equal(names, []string{"ignored"}) {
		t.Errorf("locked.External = %v, want declared dependencies", names)
	}
}

func TestEntry(t *testing.T) {
	root := packagesWorkspace(t)
	ws, err := Open(root, Settings{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	printer, _, _ := ws.Package("printer")

	e, ok := ws.Entry(printer, "greeter")
	if !ok {
		t.Fatal("greeter should resolve")
	}
	want := manifest.Entry{Src: "../../libs/greeter/my_ns/greeter", Dst: "my_ns/greeter"}
	if e != want {
		t.Errorf("Entry = %+v, want %+v", e, want)
	}
	if _, ok := ws.Entry(printer, "nope"); ok {
		t.Error("unknown unit should not resolve")
	}
}

func TestLocal(t *testing.T) {
	root := packagesWorkspace(t)
	ws, err := Open(root, Settings{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	names := func(pkgs []*Package) []string {
		var out []string
		for _, p := range pkgs {
			out = append(out, p.Name)
		}
		return out
	}

	all, _ := ws.Local(root)
	if len(all) != 3 {
		t.Errorf("Local(root) = %v", names(all))
	}
	apps, _ := ws.Local(filepath.Join(root, "apps"))
	if got := names(apps); !slices.Equal(got, []string{"locked", "printer"}) {
		t.Errorf("Local(apps) = %v", got)
	}
	inside, _ := ws.Local(filepath.Join(root, "libs", "greeter", "my_ns"))
	if got := names(inside); !slices.Equal(got, []string{"greeter"}) {
		t.Errorf("Local(inside greeter) = %v", got)
	}
}

func TestDuplicatePackageNames(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pyproject.toml":          "[project]\nname = \"ns\"\n",
		"apps/dup/pyproject.toml": "[project]\nname = \"a\"\n",
		"libs/dup/pyproject.toml": "[project]\nname = \"b\"\n",
	})
	ws, err := Open(root, Settings{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ws.Packages(); !errors.Is(err, errors.ErrCodeConfig) {
		t.Errorf("err = %v, want CONFIG", err)
	}
}

func TestModulesStyle(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".git/":                          "",
		"pyproject.toml":                 "[project]\nname = \"ns\"\n[tool.una]\nstyle = \"modules\"\n",
		"libs/ns/greeter/__init__.py":    "",
		"libs/ns/util.py":                "",
		"apps/ns/printer/__init__.py":    "",
		"apps/ns/__pycache__/x.pyc":      "",
		"projects/server/pyproject.toml": "[project]\nname = \"server\"\n\n[tool.una.libs]\n\"../../apps/ns/printer\" = \"ns/printer\"\n",
		"projects/server/README.md":      "",
	})
	ws, err := Discover(filepath.Join(root, "projects", "server"), NewViper(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ws.Style.Name() != StyleModules {
		t.Fatalf("style = %s", ws.Style.Name())
	}

	units, err := ws.Units()
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"greeter": filepath.Join(root, "libs", "ns", "greeter"),
		"util":    filepath.Join(root, "libs", "ns", "util.py"),
		"printer": filepath.Join(root, "apps", "ns", "printer"),
	}
	if len(units) != len(want) {
		t.Fatalf("Units = %v, want %v", units, want)
	}
	for k, v := range want {
		if units[k] != v {
			t.Errorf("Units[%s] = %q, want %q", k, units[k], v)
		}
	}

	server, ok, _ := ws.Package("server")
	if !ok {
		t.Fatal("server not found")
	}
	if got := ws.DeclaredInternal(server).Sorted(); !slices.Equal(got, []string{"printer"}) {
		t.Errorf("DeclaredInternal = %v", got)
	}
	e, _ := ws.Entry(server, "greeter")
	if e.Src != "../../libs/ns/greeter" || e.Dst != "ns/greeter" {
		t.Errorf("Entry = %+v", e)
	}
}
