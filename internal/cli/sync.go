package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/una/pkg/deps"
	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/workspace"
)

// syncOpts holds the command-line flags for the sync command.
type syncOpts struct {
	checkOnly bool
	quiet     bool
	alias     string
}

// syncCommand creates the sync command.
func (c *CLI) syncCommand() *cobra.Command {
	var opts syncOpts

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Add missing internal dependencies to package manifests",
		Long: `Check every package in the current directory's subtree and add the internal
dependencies it imports but does not declare.

Third-party imports that no declared distribution provides are reported but
never added; declare them yourself (uv add) and run sync again.

Examples:
  una sync                       # update manifests
  una sync --check-only          # report only, exit 1 on any gap
  una sync --alias pyyaml=yaml   # map a distribution to its import name`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSync(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.checkOnly, "check-only", false, "only check, make no changes")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print anything")
	cmd.Flags().StringVar(&opts.alias, "alias", "", "comma-separated NAME=IMPORT aliases for third-party distributions")

	return cmd
}

func (c *CLI) runSync(cmd *cobra.Command, opts syncOpts) error {
	ctx := withLogger(cmd.Context(), c.Logger)
	e, err := c.openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	pkgs, err := e.ws.Local(e.cwd)
	if err != nil {
		return err
	}

	reports, checkErr := check(ctx, e, pkgs, splitAliases(opts.alias))

	if opts.checkOnly {
		failed := false
		for _, r := range reports {
			if printMissing(r) {
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
		if !opts.quiet {
			printSuccess("All good!")
		}
		return nil
	}

	syncer := &deps.Syncer{Workspace: e.ws, Logger: e.logger}
	unresolved := false
	for _, r := range reports {
		entries := syncer.Plan(r)
		if _, err := syncer.Apply(r.Package, entries); err != nil {
			return err
		}
		rest := unplanned(r, syncer)
		if r.External.Len() > 0 || len(rest) > 0 {
			unresolved = true
		}
		if opts.quiet {
			continue
		}
		for _, en := range entries {
			printInfo("adding dep %s to %s", depList([]string{workspace.RefName(en)}), pkgName(r.Package.Name))
		}
		printImportedBy(r)
		if r.External.Len() > 0 {
			printWarning("%s can't find external: %s", r.Package.Name, strings.Join(r.External.Sorted(), ", "))
		}
		if len(rest) > 0 {
			printWarning("%s can't find internal: %s", r.Package.Name, strings.Join(rest, ", "))
		}
	}
	if checkErr != nil {
		printCheckErrors(checkErr)
		return errUnresolved
	}
	if unresolved {
		return errUnresolved
	}
	if !opts.quiet {
		printSuccess("All good!")
	}
	return nil
}

// check runs the checker over pkgs and logs how long it took. Packages that
// fail do not stop the others: the reports of every package that could be
// checked come back alongside the joined errors of the rest.
func check(ctx context.Context, e *env, pkgs []*workspace.Package, aliases []string) ([]*deps.Report, error) {
	chk := e.checker(ctx, aliases)
	prog := newProgress(loggerFromContext(ctx))
	reports, err := chk.CheckAll(pkgs)
	prog.done("Checked " + pluralize(len(reports), "package"))
	return reports, err
}

// printCheckErrors prints one line per package that could not be checked.
func printCheckErrors(err error) {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		printError("%s", errors.UserMessage(err))
		return
	}
	for _, e := range joined.Unwrap() {
		printError("%s", errors.UserMessage(e))
	}
}

// printMissing prints the "can't find" lines of r and reports whether any
// were printed.
func printMissing(r *deps.Report) bool {
	if r.External.Len() > 0 {
		printError("%s can't find external: %s", pkgName(r.Package.Name), depList(r.External.Sorted()))
	}
	if r.Internal.Len() > 0 {
		printError("%s can't find internal: %s", pkgName(r.Package.Name), depList(r.Internal.Sorted()))
	}
	return !r.Empty()
}

// printImportedBy prints, for every scanned unit, the other internal units
// it imports.
func printImportedBy(r *deps.Report) {
	for _, key := range r.InternalImports.Keys().Sorted() {
		others := r.InternalImports[key].Without(key)
		if others.Len() == 0 {
			continue
		}
		printDetail("%s is importing %s", key, strings.Join(others.Sorted(), ", "))
	}
}

// unplanned returns the missing internal names sync could not add because
// they are not workspace units.
func unplanned(r *deps.Report, s *deps.Syncer) []string {
	planned := make(map[string]bool)
	for _, en := range s.Plan(r) {
		planned[workspace.RefName(en)] = true
	}
	var out []string
	for _, name := range r.Internal.Sorted() {
		if !planned[name] {
			out = append(out, name)
		}
	}
	return out
}

func splitAliases(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
