package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/una/pkg/scaffold"
)

// createCommand creates the create command and its subcommands.
func (c *CLI) createCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a workspace or add a package to one",
	}

	cmd.AddCommand(c.createWorkspaceCommand())
	cmd.AddCommand(c.createPackageCommand("lib <name>", "Create a library under libs/", "libs"))
	cmd.AddCommand(c.createPackageCommand("app <name>", "Create an application under apps/", "apps"))
	cmd.AddCommand(c.createPackageCommand("package <name> <dir>", "Create a package under a top-level directory", ""))

	return cmd
}

func (c *CLI) createWorkspaceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "workspace",
		Short: "Turn the current uv project into an example una workspace",
		Long: `Set the workspace members in the root pyproject.toml and create an example
library (greeter) and application (printer) that imports it.

Run it in a fresh "uv init" project inside a git repository.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			if err := scaffold.CreateWorkspace(e.ws); err != nil {
				return err
			}
			printSuccess("Created workspace %s", pkgName(e.ws.Namespace))
			printFile(filepath.Join(e.ws.Root, "libs", scaffold.ExampleLib))
			printFile(filepath.Join(e.ws.Root, "apps", scaffold.ExampleApp))
			printNewline()
			printNextStep("Install dependencies", "uv sync --all-packages")
			printNextStep("Check dependencies", "una sync")
			return nil
		},
	}
}

// createPackageCommand creates a package subcommand. An empty topDir means
// the directory is the second argument.
func (c *CLI) createPackageCommand(use, short, topDir string) *cobra.Command {
	nargs := 1
	if topDir == "" {
		nargs = 2
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, top := args[0], topDir
			if top == "" {
				top = args[1]
			}

			e, err := c.openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			dir, err := scaffold.CreatePackage(e.ws, name, top, scaffold.Options{})
			if err != nil {
				return err
			}
			printSuccess("Created %s", pkgName(name))
			printFile(dir)
			printNextStep("Check dependencies", "una sync")
			return nil
		},
	}
}
