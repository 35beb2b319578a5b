package cli

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/una/pkg/build"
	"github.com/matzehuels/una/pkg/workspace"
)

// buildDataCommand creates the build-data command used by build hooks.
func (c *CLI) buildDataCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build-data [dir]",
		Short: "Print the files and dependencies a build hook must add",
		Long: `Print, as JSON, what a build backend hook needs to package the member in
dir (default: the current directory): the files of its internal
dependencies to force-include and, in the packages style, the external
dependencies they bring along.

Run from an unpacked sdist, the workspace manifest bundled in the sdist is
used instead of the workspace.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runBuildData(cmd, dir)
		},
	}
}

func (c *CLI) runBuildData(cmd *cobra.Command, dir string) error {
	if c.flags.dir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(c.flags.dir, dir)
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	var (
		ws  *workspace.Workspace
		pkg *workspace.Package
	)
	if build.IsSdist(dir) {
		v := workspace.NewViper()
		if err := bindFlags(v, cmd); err != nil {
			return err
		}
		if ws, pkg, err = build.OpenSdist(dir, v, c.Logger); err != nil {
			return err
		}
	} else {
		e, err := c.openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()
		ws = e.ws
		if pkg, err = findPackage(ws, dir); err != nil {
			return err
		}
	}

	data, err := build.Compute(ws, pkg)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
