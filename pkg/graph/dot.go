package graph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Options configures DOT output.
type Options struct {
	// Namespace, when set, is shown as the graph label.
	Namespace string
	// Highlight marks nodes that take part in an import cycle.
	Highlight bool
}

var kindFill = map[Kind]string{
	KindUnit:    "white",
	KindApp:     "\"#d7eefa\"",
	KindLib:     "\"#e3f5d8\"",
	KindPackage: "\"#fdf1d0\"",
	KindMissing: "lightgrey",
}

// ToDOT converts g to Graphviz DOT. The result can be rendered with
// [RenderSVG]. Nodes and edges are emitted in a stable order.
func ToDOT(g *Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if opts.Namespace != "" {
		fmt.Fprintf(&buf, "  label=%q;\n", opts.Namespace)
		buf.WriteString("  labelloc=t;\n")
	}
	buf.WriteString("\n")

	inCycle := map[string]bool{}
	if opts.Highlight {
		for _, c := range g.Cycles() {
			for _, id := range c {
				inCycle[id] = true
			}
		}
	}

	for _, n := range g.Nodes() {
		attrs := fmtAttrs(*n, inCycle[n.ID])
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if inCycle[e.From] && inCycle[e.To] {
			fmt.Fprintf(&buf, "  %q -> %q [color=\"#d75f5f\"];\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n Node, cyclic bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.ID)}
	if fill, ok := kindFill[n.Kind]; ok && fill != "white" {
		attrs = append(attrs, "fillcolor="+fill)
	}
	if n.Kind == KindMissing {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	if cyclic {
		attrs = append(attrs, "color=\"#d75f5f\"", "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's svg tag with one whose viewBox starts
// at the origin, so the image scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
