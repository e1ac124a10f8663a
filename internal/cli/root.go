package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gemindex/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gemindex",
		Short: "gemindex builds a normalized index of the RubyGems ecosystem",
		Long: `gemindex crawls the RubyGems registry from a set of seed gems, follows every
dependency until the closure is complete, coerces versions and requirements
to semver, and writes one deterministic index of gem name to versions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml); default ./gemindex.toml if present")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.coerceCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
