package graph

import (
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/una/pkg/names"
	"github.com/matzehuels/una/pkg/pyimport"
)

func sampleImports() pyimport.Imports {
	return pyimport.Imports{
		"app":     names.Of("greeter", "printer"),
		"greeter": names.Of("util"),
		"printer": names.Of("greeter", "printer"),
		"util":    names.Of("ghost"),
	}
}

func TestFromImports(t *testing.T) {
	g := FromImports(sampleImports())

	if g.NodeCount() != 5 {
		t.Fatalf("NodeCount = %d, want 5", g.NodeCount())
	}
	if n, ok := g.Node("ghost"); !ok || n.Kind != KindMissing {
		t.Errorf("ghost = %+v, want missing node", n)
	}
	if n, _ := g.Node("app"); n.Kind != KindUnit {
		t.Errorf("app kind = %q", n.Kind)
	}
	if got := g.Children("printer"); !slices.Equal(got, []string{"greeter"}) {
		t.Errorf("Children(printer) = %v, self-import should be dropped", got)
	}
	if got := g.Parents("greeter"); !slices.Equal(got, []string{"app", "printer"}) {
		t.Errorf("Parents(greeter) = %v", got)
	}
	if got := g.Sources(); !slices.Equal(got, []string{"app"}) {
		t.Errorf("Sources = %v", got)
	}
	if got := g.Sinks(); !slices.Equal(got, []string{"ghost"}) {
		t.Errorf("Sinks = %v", got)
	}
	if got := g.Closure("app"); !slices.Equal(got, []string{"ghost", "greeter", "printer", "util"}) {
		t.Errorf("Closure(app) = %v", got)
	}
}

func TestAddErrors(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); err != ErrInvalidNodeID {
		t.Errorf("empty ID: %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != ErrDuplicateNodeID {
		t.Errorf("duplicate: %v", err)
	}
	if err := g.AddEdge(Edge{From: "x", To: "a"}); err != ErrUnknownSourceNode {
		t.Errorf("unknown source: %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); err != ErrUnknownTargetNode {
		t.Errorf("unknown target: %v", err)
	}

	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, duplicate edges should collapse", g.EdgeCount())
	}
}

func TestCycles(t *testing.T) {
	tests := []struct {
		name    string
		imports pyimport.Imports
		want    [][]string
	}{
		{
			name:    "acyclic",
			imports: sampleImports(),
			want:    nil,
		},
		{
			name: "two node cycle",
			imports: pyimport.Imports{
				"a": names.Of("b"),
				"b": names.Of("a"),
			},
			want: [][]string{{"a", "b", "a"}},
		},
		{
			name: "three node cycle with tail",
			imports: pyimport.Imports{
				"a": names.Of("b"),
				"b": names.Of("c"),
				"c": names.Of("a", "d"),
			},
			want: [][]string{{"a", "b", "c", "a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromImports(tt.imports).Cycles()
			if len(got) != len(tt.want) {
				t.Fatalf("Cycles = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !slices.Equal(got[i], tt.want[i]) {
					t.Errorf("cycle %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestToDOT(t *testing.T) {
	g := FromImports(pyimport.Imports{
		"a": names.Of("b"),
		"b": names.Of("a", "ghost"),
	})
	g.SetKind("a", KindApp)

	dot := ToDOT(g, Options{Namespace: "my_ns", Highlight: true})

	for _, want := range []string{
		"digraph G {",
		`label="my_ns";`,
		`"a" [label="a", fillcolor="#d7eefa", color="#d75f5f", penwidth=2];`,
		`"ghost" [label="ghost", fillcolor=lightgrey, style="rounded,filled,dashed"];`,
		`"a" -> "b" [color="#d75f5f"];`,
		`"b" -> "ghost";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox = %s", out)
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}
