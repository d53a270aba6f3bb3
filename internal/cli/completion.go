package cli

import (
	"os"

	"strings"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for nodecanvas.

To load completions:

Bash:
  $ source <(nodecanvas completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ nodecanvas completion bash > /etc/bash_completion.d/nodecanvas
  # macOS:
  $ nodecanvas completion bash > $(brew --prefix)/etc/bash_completion.d/nodecanvas

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ nodecanvas completion zsh > "${fpath[1]}/_nodecanvas"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ nodecanvas completion fish | source

  # To load completions for each session, execute once:
  $ nodecanvas completion fish > ~/.config/fish/completions/nodecanvas.fish

PowerShell:
  PS> nodecanvas completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> nodecanvas completion powershell > nodecanvas.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeKinds completes node kind IDs with their titles as descriptions.
func completeKinds(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cat, err := newCatalog()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, k := range cat.Kinds() {
		if strings.HasPrefix(k.ID, toComplete) {
			out = append(out, k.ID+"\t"+k.Title)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
