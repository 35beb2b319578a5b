package graph

import (
	"errors"
	"maps"
	"slices"

	"github.com/matzehuels/una/pkg/pyimport"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Kind classifies a node for rendering.
type Kind string

const (
	KindUnit    Kind = "unit"    // a unit whose sources were scanned
	KindMissing Kind = "missing" // imported, but not found in the workspace
	KindApp     Kind = "app"
	KindLib     Kind = "lib"
	KindPackage Kind = "package"
)

// Node is a unit in the import graph.
type Node struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
}

// Edge records that From imports To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is a directed graph of units. The zero value is not usable; create
// graphs with [New] or [FromImports].
type Graph struct {
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// FromImports builds a graph from the internal import map returned by the
// internal dependency resolver: one node per key and per imported unit, one
// edge per import. Units that appear only as values are [KindMissing].
// Self-imports are dropped.
func FromImports(imports pyimport.Imports) *Graph {
	g := New()
	for _, id := range imports.Keys().Sorted() {
		_ = g.AddNode(Node{ID: id, Kind: KindUnit})
	}
	for _, id := range imports.Values().Diff(imports.Keys()).Sorted() {
		_ = g.AddNode(Node{ID: id, Kind: KindMissing})
	}
	for _, from := range imports.Keys().Sorted() {
		for _, to := range imports[from].Sorted() {
			if to == from {
				continue
			}
			_ = g.AddEdge(Edge{From: from, To: to})
		}
	}
	return g
}

// AddNode adds a node. Returns ErrInvalidNodeID if the ID is empty, or
// ErrDuplicateNodeID if it is already present.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Kind == "" {
		n.Kind = KindUnit
	}
	g.nodes[n.ID] = &n
	return nil
}

// AddEdge adds a directed edge between two existing nodes. Adding the same
// edge twice is a no-op.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if slices.Contains(g.outgoing[e.From], e.To) {
		return nil
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// SetKind changes the kind of an existing node. It reports whether the node
// exists.
func (g *Graph) SetKind(id string, kind Kind) bool {
	n, ok := g.nodes[id]
	if ok {
		n.Kind = kind
	}
	return ok
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes sorted by ID.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, id := range slices.Sorted(maps.Keys(g.nodes)) {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the units imported by id, sorted.
func (g *Graph) Children(id string) []string {
	return sortedCopy(g.outgoing[id])
}

// Parents returns the units importing id, sorted.
func (g *Graph) Parents(id string) []string {
	return sortedCopy(g.incoming[id])
}

// Sources returns the IDs of nodes nothing imports, sorted.
func (g *Graph) Sources() []string {
	var out []string
	for _, n := range g.Nodes() {
		if len(g.incoming[n.ID]) == 0 {
			out = append(out, n.ID)
		}
	}
	return out
}

// Sinks returns the IDs of nodes that import nothing, sorted.
func (g *Graph) Sinks() []string {
	var out []string
	for _, n := range g.Nodes() {
		if len(g.outgoing[n.ID]) == 0 {
			out = append(out, n.ID)
		}
	}
	return out
}

// Closure returns every node reachable from id, excluding id itself, sorted.
func (g *Graph) Closure(id string) []string {
	seen := map[string]bool{id: true}
	queue := []string{id}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.outgoing[cur] {
			if seen[next] {
				continue
			}
			seen[next] = true
			out = append(out, next)
			queue = append(queue, next)
		}
	}
	slices.Sort(out)
	return out
}

// Cycles returns one representative path for every back edge found by a
// depth-first search, each starting and ending at the same node:
// [a b a]. Traversal order is deterministic.
func (g *Graph) Cycles() [][]string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var stack []string
	var cycles [][]string

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		stack = append(stack, id)
		for _, child := range g.Children(id) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				i := slices.Index(stack, child)
				cycle := append(slices.Clone(stack[i:]), child)
				cycles = append(cycles, cycle)
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	return cycles
}

func sortedCopy(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}
