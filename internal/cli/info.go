package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/una/pkg/deps"
	"github.com/matzehuels/una/pkg/workspace"
)

// infoOpts holds the command-line flags for the info command.
type infoOpts struct {
	alias   string
	pkgName string
}

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	var opts infoOpts

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the internal and external dependencies of each package",
		Long: `Show, for every package in the current directory's subtree, the internal
units and third-party imports it uses and whether each one is declared.

info never writes. It exits 1 if any package is missing a dependency.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInfo(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.alias, "alias", "", "comma-separated NAME=IMPORT aliases for third-party distributions")
	cmd.Flags().StringVarP(&opts.pkgName, "package", "p", "", "only show this package")

	_ = cmd.RegisterFlagCompletionFunc("package", c.completePackageNames)
	return cmd
}

func (c *CLI) runInfo(cmd *cobra.Command, opts infoOpts) error {
	ctx := withLogger(cmd.Context(), c.Logger)
	e, err := c.openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	var pkgs []*workspace.Package
	if opts.pkgName != "" {
		pkg, err := findPackage(e.ws, opts.pkgName)
		if err != nil {
			return err
		}
		pkgs = []*workspace.Package{pkg}
	} else if pkgs, err = e.ws.Local(e.cwd); err != nil {
		return err
	}

	reports, checkErr := check(ctx, e, pkgs, splitAliases(opts.alias))

	printKeyValue("Root", e.ws.Root)
	printKeyValue("Namespace", e.ws.Namespace)
	printKeyValue("Style", e.ws.Style.Name())
	printNewline()

	failed := false
	for _, r := range reports {
		printPackageInfo(e.ws, r)
		if !r.Empty() {
			failed = true
		}
	}
	if checkErr != nil {
		printCheckErrors(checkErr)
		return errUnresolved
	}
	if failed {
		return errUnresolved
	}
	return nil
}

func printPackageInfo(ws *workspace.Workspace, r *deps.Report) {
	fmt.Println(StyleTitle.Render(r.Package.Name) + " " + StyleDim.Render(string(r.Package.Kind)))

	if rows := internalRows(ws, r); len(rows) > 0 {
		printTable([]string{"Internal", "Status", "Imported by"}, rows)
	} else {
		printDetail("no internal dependencies")
	}
	if rows := externalRows(r); len(rows) > 0 {
		printTable([]string{"External", "Status", "Imported by"}, rows)
	} else {
		printDetail("no third-party imports")
	}
	if r.Package.FromLockFile() {
		printDetail("external dependencies read from %s", r.Package.Source)
	}
	printNewline()
}

// internalRows lists every internal unit the package declares or imports.
func internalRows(ws *workspace.Workspace, r *deps.Report) [][]string {
	declared := ws.DeclaredInternal(r.Package).Without(r.Package.Name)
	used := r.InternalImports.Values().Without(r.Package.Name)
	var rows [][]string
	for _, name := range declared.Union(used).Sorted() {
		status := StyleSuccess.Render(iconSuccess + " declared")
		switch {
		case r.Internal.Has(name):
			status = StyleError.Render(iconError + " missing")
		case !used.Has(name):
			status = StyleDim.Render("unused")
		}
		rows = append(rows, []string{name, status, joinOrDash(deps.Importers(r.InternalImports, name))})
	}
	return rows
}

// externalRows lists every third-party import of the package.
func externalRows(r *deps.Report) [][]string {
	var rows [][]string
	for _, name := range r.ExternalImports.Values().Sorted() {
		status := StyleSuccess.Render(iconSuccess + " ok")
		if r.External.Has(strings.ToLower(name)) {
			status = StyleError.Render(iconError + " missing")
		}
		rows = append(rows, []string{name, status, joinOrDash(deps.Importers(r.ExternalImports, name))})
	}
	return rows
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
