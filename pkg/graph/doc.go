// Package graph models the internal import graph of a workspace.
//
// Nodes are internal units (the second segment of a namespaced import such
// as "ns.greeter") and edges point from an importing unit to the unit it
// imports. The graph is built from the output of the internal dependency
// resolver with [FromImports] and rendered through Graphviz with [ToDOT] and
// [RenderSVG].
//
// Python allows import cycles between modules, so unlike a package DAG the
// graph may contain cycles. [Graph.Cycles] reports them instead of rejecting
// the graph.
package graph
