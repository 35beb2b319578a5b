package changes

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/una/pkg/names"
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

func packagesWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".git/HEAD":               "",
		"pyproject.toml":          "[project]\nname = \"ns\"\n",
		"libs/a/pyproject.toml":   "[project]\nname = \"a\"\n",
		"libs/a/ns/a/__init__.py": "",
		"libs/b/pyproject.toml":   "[project]\nname = \"b\"\n\n[tool.una.deps]\n\"../../libs/a/ns/a\" = \"ns/a\"\n",
		"libs/b/ns/b/__init__.py": "",
		"libs/bb/pyproject.toml":  "[project]\nname = \"bb\"\n",
		"apps/c/pyproject.toml":   "[project]\nname = \"c\"\n\n[tool.una.deps]\n\"../../libs/b/ns/b\" = \"ns/b\"\n",
		"apps/c/ns/c/__init__.py": "",
		"apps/d/pyproject.toml":   "[project]\nname = \"d\"\n",
		"apps/d/ns/d/__init__.py": "",
	})
	ws, err := workspace.Discover(root, workspace.NewViper(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

func TestChangedPackages(t *testing.T) {
	ws := packagesWorkspace(t)
	files := []string{
		"libs/a/ns/a/__init__.py",
		"libs/b/pyproject.toml",
		"libs/bbb/other.py",
		"apps/c/ns/c/__init__.py",
		"README.md",
	}

	got, err := ChangedPackages(ws, files)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got[workspace.KindLib], []string{"a", "b"}) {
		t.Errorf("libs = %v, want [a b]", got[workspace.KindLib])
	}
	if !slices.Equal(got[workspace.KindApp], []string{"c"}) {
		t.Errorf("apps = %v, want [c]", got[workspace.KindApp])
	}
	if !slices.Equal(got.Kinds(), []workspace.Kind{workspace.KindApp, workspace.KindLib}) {
		t.Errorf("Kinds = %v", got.Kinds())
	}
	if got.Names().Len() != 3 {
		t.Errorf("Names = %v", got.Names())
	}
}

func TestChangedPackagesModulesStyle(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".git/HEAD":                   "",
		"pyproject.toml":              "[project]\nname = \"ns\"\n\n[tool.una]\nstyle = \"modules\"\n",
		"libs/ns/greeter/__init__.py": "",
		"libs/ns/single.py":           "",
		"apps/ns/server/__init__.py":  "",
		"projects/srv/pyproject.toml": "[project]\nname = \"srv\"\n",
	})
	ws, err := workspace.Discover(root, workspace.NewViper(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	got, err := ChangedPackages(ws, []string{"libs/ns/single.py", "apps/ns/server/main.py", "projects/srv/pyproject.toml"})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got[workspace.KindLib], []string{"single"}) {
		t.Errorf("libs = %v", got[workspace.KindLib])
	}
	if !slices.Equal(got[workspace.KindApp], []string{"server"}) {
		t.Errorf("apps = %v", got[workspace.KindApp])
	}
}

func TestDependents(t *testing.T) {
	ws := packagesWorkspace(t)
	got, err := Dependents(ws, names.Of("a"))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"b", "c"}; !slices.Equal(got, want) {
		t.Errorf("Dependents(a) = %v, want %v", got, want)
	}

	got, _ = Dependents(ws, names.Of("d"))
	if len(got) != 0 {
		t.Errorf("Dependents(d) = %v, want none", got)
	}
}

func TestLatestTag(t *testing.T) {
	tests := []struct {
		name   string
		out    string
		err    error
		want   string
		wantOK bool
	}{
		{name: "newest first", out: "v1.2.0\nv1.1.0\n", want: "v1.2.0", wantOK: true},
		{name: "no tags", out: "", wantOK: false},
		{name: "git fails", err: errors.New("not a git repository"), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotArgs []string
			g := &Git{Dir: "/repo", run: func(_ context.Context, dir string, args ...string) (string, error) {
				gotArgs = args
				return tt.out, tt.err
			}}
			tag, ok := g.LatestTag(context.Background(), "v[0-9]*", "-committerdate")
			if tag != tt.want || ok != tt.wantOK {
				t.Errorf("LatestTag = %q, %v, want %q, %v", tag, ok, tt.want, tt.wantOK)
			}
			if want := "tag -l --sort=-committerdate v[0-9]*"; strings.Join(gotArgs, " ") != want {
				t.Errorf("args = %v, want %q", gotArgs, want)
			}
		})
	}
}

func TestChangedFiles(t *testing.T) {
	g := &Git{run: func(_ context.Context, _ string, args ...string) (string, error) {
		if strings.Join(args, " ") != "diff v1.0.0 --stat --name-only" {
			t.Errorf("args = %v", args)
		}
		return "libs/a/ns/a/x.py\n\napps/c/pyproject.toml\n", nil
	}}
	files, err := g.ChangedFiles(context.Background(), "v1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"libs/a/ns/a/x.py", "apps/c/pyproject.toml"}; !slices.Equal(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}
