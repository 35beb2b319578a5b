package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/una/pkg/workspace"
)

// completionCommand creates the completion command for generating shell completions.
// Scripts are written to the command's output so they can be redirected or captured.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for una.

Besides commands and flags, the scripts complete package names for
"una info -p" and "una graph -p" from the workspace you are in.

Bash:
  $ source <(una completion bash)
  $ una completion bash > /etc/bash_completion.d/una

Zsh:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  $ una completion zsh > "${fpath[1]}/_una"

Fish:
  $ una completion fish > ~/.config/fish/completions/una.fish

PowerShell:
  PS> una completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completePackageNames offers the names of the workspace's packages, each
// described by its kind. It never opens the distribution cache.
func (c *CLI) completePackageNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cwd := c.flags.dir
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		cwd = wd
	}
	ws, err := workspace.Discover(cwd, workspace.NewViper(), nil, c.Logger)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	pkgs, err := ws.Packages()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var out []string
	for _, p := range pkgs {
		if strings.HasPrefix(p.Name, toComplete) {
			out = append(out, p.Name+"\t"+string(p.Kind))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
