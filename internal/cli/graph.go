package cli

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/una/pkg/deps"
	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/graph"
	"github.com/matzehuels/una/pkg/pyimport"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	format      string
	output      string
	pkgName     string
	noHighlight bool
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw the internal import graph of the workspace",
		Long: `Draw which internal units import which, as Graphviz DOT or SVG, or dump
the graph as JSON.

Import cycles are allowed but reported, and highlighted in the output.
Imports of units that do not exist in the workspace are drawn dashed.`,
		Example: `  una graph > deps.dot
  una graph --format svg -o deps.svg
  una graph -p printer`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "dot", "output format: dot, svg or json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to `FILE` instead of stdout")
	cmd.Flags().StringVarP(&opts.pkgName, "package", "p", "", "only draw what this package includes")
	cmd.Flags().BoolVar(&opts.noHighlight, "no-highlight", false, "do not highlight import cycles")

	_ = cmd.RegisterFlagCompletionFunc("package", c.completePackageNames)
	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, opts graphOpts) error {
	ctx := withLogger(cmd.Context(), c.Logger)
	switch opts.format {
	case "dot", "svg", "json":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want dot, svg or json)", opts.format)
	}
	e, err := c.openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	units, err := e.ws.Units()
	if err != nil {
		return err
	}
	roots := slices.Sorted(maps.Values(units))
	if opts.pkgName != "" {
		pkg, err := findPackage(e.ws, opts.pkgName)
		if err != nil {
			return err
		}
		roots = e.ws.IncludedRoots(pkg)
	}

	prog := newProgress(e.logger)
	resolver := &deps.Resolver{
		Namespace: e.ws.Namespace,
		Extractor: pyimport.NewExtractor(0),
		Locator:   e.ws,
		Logger:    e.logger,
	}
	imports, err := resolver.DiscoverInternal(roots)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Scanned %s", pluralize(len(imports), "unit")))

	g := graph.FromImports(imports)
	for name, root := range units {
		g.SetKind(name, graph.Kind(e.ws.KindOf(root)))
	}

	cycles := g.Cycles()
	for _, cyc := range cycles {
		printWarning("import cycle: %s", strings.Join(cyc, " "+iconArrow+" "))
	}

	var out []byte
	switch opts.format {
	case "json":
		var buf bytes.Buffer
		if err := graph.WriteJSON(g, e.ws.Namespace, &buf); err != nil {
			return err
		}
		out = buf.Bytes()
	case "svg":
		dot := graph.ToDOT(g, graph.Options{Namespace: e.ws.Namespace, Highlight: !opts.noHighlight})
		if out, err = graph.RenderSVG(ctx, dot); err != nil {
			return err
		}
	default:
		out = []byte(graph.ToDOT(g, graph.Options{Namespace: e.ws.Namespace, Highlight: !opts.noHighlight}))
	}

	if opts.output == "" {
		_, err := os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", opts.output)
	}
	printSuccess("Wrote import graph")
	printFile(opts.output)
	printStats(g.NodeCount(), g.EdgeCount(), len(cycles))
	return nil
}
