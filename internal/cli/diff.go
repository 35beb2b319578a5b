package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/una/pkg/changes"
)

// diffOpts holds the command-line flags for the diff command.
type diffOpts struct {
	since   string
	intDeps bool
}

// diffCommand creates the diff command.
func (c *CLI) diffCommand() *cobra.Command {
	var opts diffOpts

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "List the packages changed since the latest matching git tag",
		Long: `List the packages with files changed since the most recent git tag matching
a pattern. --since names a key of [tool.una.tag-patterns] (for example
"release") or is used as the tag pattern itself.

With --int-deps, packages that depend on a changed package through their
declared internal dependencies are listed too.`,
		Example: `  una diff
  una diff --since 'v*' --int-deps`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiff(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.since, "since", "release", "tag pattern key or glob to diff against")
	cmd.Flags().BoolVar(&opts.intDeps, "int-deps", false, "include packages depending on the changed ones")

	return cmd
}

func (c *CLI) runDiff(cmd *cobra.Command, opts diffOpts) error {
	ctx := withLogger(cmd.Context(), c.Logger)
	e, err := c.openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	pattern := opts.since
	if p, ok := e.ws.Settings.TagPatterns[opts.since]; ok && p != "" {
		pattern = p
	}

	git := &changes.Git{Dir: e.ws.Root, Logger: loggerFromContext(ctx)}
	tag, ok := git.LatestTag(ctx, pattern, e.ws.Settings.TagSort)
	if !ok {
		printInfo("No tags found for %s", pattern)
		return nil
	}
	files, err := git.ChangedFiles(ctx, tag)
	if err != nil {
		e.logger.Debug("diff failed", "tag", tag, "err", err)
		printInfo("No tags found for %s", pattern)
		return nil
	}

	e.logger.Debug("changed files", "tag", tag, "count", len(files))

	changed, err := changes.ChangedPackages(e.ws, files)
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		printInfo("No changes since %s", tag)
		return nil
	}

	printInfo("Changes since %s", StyleHighlight.Render(tag))
	for _, kind := range changed.Kinds() {
		printKeyValue(string(kind), depList(changed[kind]))
	}

	if opts.intDeps {
		dependents, err := changes.Dependents(e.ws, changed.Names())
		if err != nil {
			return err
		}
		if len(dependents) > 0 {
			printKeyValue("dependents", depList(dependents))
		} else {
			printDetail("no dependents")
		}
	}
	return nil
}
