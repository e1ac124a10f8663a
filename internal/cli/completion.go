package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gemindex/pkg/config"
)

// completionCommand prints a shell completion script. Besides subcommands and
// flags, the scripts complete the fixed values of --mode, --cache and --format.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for gemindex to stdout.

The script completes subcommands, flags, and the fixed values of
build --mode (batch, compact), build --cache (file, redis, none) and
graph --format (dot, svg).

Bash:
  $ source <(gemindex completion bash)
  $ gemindex completion bash > /etc/bash_completion.d/gemindex

Zsh (with compinit enabled):
  $ gemindex completion zsh > "${fpath[1]}/_gemindex"

Fish:
  $ gemindex completion fish > ~/.config/fish/completions/gemindex.fish

PowerShell:
  PS> gemindex completion powershell | Out-String | Invoke-Expression

Open a new shell after installing a script.`,
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
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}

	return cmd
}

// completeValues registers fixed completions for a flag of cmd.
func completeValues(cmd *cobra.Command, flag string, values ...string) {
	_ = cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
}

var (
	modeValues   = []string{config.ModeBatch, config.ModeCompact}
	cacheValues  = []string{config.CacheFile, config.CacheRedis, config.CacheNone}
	formatValues = []string{"dot", "svg"}
)
