package changes

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/una/pkg/graph"
	"github.com/matzehuels/una/pkg/names"
	"github.com/matzehuels/una/pkg/workspace"
)

// Changed groups changed names by kind.
type Changed map[workspace.Kind][]string

// Names returns every changed name regardless of kind.
func (c Changed) Names() names.Set {
	out := names.New(0)
	for _, v := range c {
		out.Add(v...)
	}
	return out
}

// Kinds returns the kinds present, sorted.
func (c Changed) Kinds() []workspace.Kind {
	return slices.Sorted(maps.Keys(c))
}

// ChangedPackages maps changed files (slash-separated, relative to the
// workspace root) to the units they belong to. In the packages style a unit
// is a member directory; in the modules style it is a module below
// <top>/<ns>/.
func ChangedPackages(ws *workspace.Workspace, files []string) (Changed, error) {
	roots, err := unitRoots(ws)
	if err != nil {
		return nil, err
	}

	hit := make(map[string]workspace.Kind)
	for _, f := range files {
		f = filepath.ToSlash(f)
		for name, r := range roots {
			if f == r.rel || strings.HasPrefix(f, r.rel+"/") {
				hit[name] = r.kind
			}
		}
	}

	out := make(Changed)
	for _, name := range slices.Sorted(maps.Keys(hit)) {
		k := hit[name]
		out[k] = append(out[k], name)
	}
	return out, nil
}

// Dependents returns the packages, other than those in changed, whose
// declared internal dependencies reach a changed name directly or
// transitively.
func Dependents(ws *workspace.Workspace, changed names.Set) ([]string, error) {
	pkgs, err := ws.Packages()
	if err != nil {
		return nil, err
	}

	g := graph.New()
	for _, p := range pkgs {
		_ = g.AddNode(graph.Node{ID: p.Name, Kind: graph.Kind(p.Kind)})
	}
	for _, p := range pkgs {
		for _, dep := range ws.DeclaredInternal(p).Sorted() {
			if _, ok := g.Node(dep); !ok {
				_ = g.AddNode(graph.Node{ID: dep})
			}
			_ = g.AddEdge(graph.Edge{From: p.Name, To: dep})
		}
	}

	var out []string
	for _, p := range pkgs {
		if changed.Has(p.Name) {
			continue
		}
		for _, dep := range g.Closure(p.Name) {
			if changed.Has(dep) {
				out = append(out, p.Name)
				break
			}
		}
	}
	return out, nil
}

type unitRoot struct {
	rel  string
	kind workspace.Kind
}

func unitRoots(ws *workspace.Workspace) (map[string]unitRoot, error) {
	out := make(map[string]unitRoot)
	add := func(name, dir string) {
		rel, err := filepath.Rel(ws.Root, dir)
		if err != nil {
			return
		}
		out[name] = unitRoot{rel: filepath.ToSlash(rel), kind: ws.KindOf(dir)}
	}

	if ws.Style.IncludesSelf() {
		pkgs, err := ws.Packages()
		if err != nil {
			return nil, err
		}
		for _, p := range pkgs {
			add(p.Name, p.Dir)
		}
		return out, nil
	}

	units, err := ws.Units()
	if err != nil {
		return nil, err
	}
	for name, dir := range units {
		add(name, dir)
	}
	return out, nil
}
