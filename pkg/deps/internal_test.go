package deps

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/una/pkg/names"
	"github.com/matzehuels/una/pkg/pyimport"
)

func TestInternalNames(t *testing.T) {
	all := pyimport.Imports{
		"app":   names.Of("ns.greeter", "ns.greeter.util", "ns.db", "os", "nsx.other", "ns"),
		"other": names.Of("requests"),
	}
	got := InternalNames(all, "ns")
	if len(got) != 1 {
		t.Fatalf("InternalNames = %v, want only app", got)
	}
	if s := got["app"].Sorted(); !slices.Equal(s, []string{"db", "greeter"}) {
		t.Errorf("app = %v", s)
	}
}

func TestClosure(t *testing.T) {
	m := pyimport.Imports{
		"a": names.Of("b"),
		"b": names.Of("c"),
		"c": names.Of("a"),
		"d": names.Of("a"),
	}
	if got := Closure(m, "a").Sorted(); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("Closure(a) = %v, want [b c]", got)
	}
	if got := Closure(m, "d").Sorted(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Closure(d) = %v", got)
	}
	if got := Closure(m, "missing"); got.Len() != 0 {
		t.Errorf("Closure(missing) = %v", got)
	}
}

func TestDiffInternalExcludesSelf(t *testing.T) {
	closure := pyimport.Imports{
		"app": names.Of("app", "greeter"),
		"lib": names.Of("lib", "helpers"),
	}
	got := DiffInternal(closure, names.Of("greeter"))
	if s := got.Sorted(); !slices.Equal(s, []string{"helpers"}) {
		t.Errorf("DiffInternal = %v, want [helpers]", s)
	}
}

type mapLocator map[string]string

func (m mapLocator) Locate(name string) (string, bool) {
	root, ok := m[name]
	return root, ok
}

func TestDiscoverInternal(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a/__init__.py": "from ns import b\nimport requests\n",
		"b/__init__.py": "import ns.c.models\n",
		"c/__init__.py": "from ns.a import thing\nfrom ns import ghost\n",
		"d/__init__.py": "import ns.a\n",
	}
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	loc := mapLocator{
		"a": filepath.Join(dir, "a"),
		"b": filepath.Join(dir, "b"),
		"c": filepath.Join(dir, "c"),
		"d": filepath.Join(dir, "d"),
	}
	r := &Resolver{Namespace: "ns", Extractor: pyimport.NewExtractor(0), Locator: loc}

	got, err := r.DiscoverInternal([]string{filepath.Join(dir, "a")})
	if err != nil {
		t.Fatalf("DiscoverInternal: %v", err)
	}
	if keys := got.Keys().Sorted(); !slices.Equal(keys, []string{"a", "b", "c"}) {
		t.Errorf("keys = %v, want [a b c]", keys)
	}
	if v := got["c"].Sorted(); !slices.Equal(v, []string{"a", "ghost"}) {
		t.Errorf("c = %v", v)
	}
	if c := Closure(got, "a").Sorted(); !slices.Equal(c, []string{"b", "c", "ghost"}) {
		t.Errorf("Closure(a) = %v", c)
	}
}
