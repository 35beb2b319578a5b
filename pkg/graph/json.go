package graph

import (
	"encoding/json"
	"fmt"
	"io"
)

type document struct {
	Namespace string     `json:"namespace,omitempty"`
	Nodes     []Node     `json:"nodes"`
	Edges     []Edge     `json:"edges"`
	Cycles    [][]string `json:"cycles,omitempty"`
}

// WriteJSON encodes g as JSON and writes it to w. Nodes are sorted by ID,
// edges keep insertion order, and any import cycles are listed.
// The output can be read back with [ReadJSON].
func WriteJSON(g *Graph, namespace string, w io.Writer) error {
	out := document{
		Namespace: namespace,
		Nodes:     make([]Node, 0, g.NodeCount()),
		Edges:     g.Edges(),
		Cycles:    g.Cycles(),
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, *n)
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a graph written by [WriteJSON]. The cycles field is
// ignored since it is derived from the edges.
//
// It returns an error if the JSON is malformed, a node ID is empty or
// repeated, or an edge references an unknown node.
func ReadJSON(r io.Reader) (*Graph, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := New()
	for _, n := range data.Nodes {
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}
