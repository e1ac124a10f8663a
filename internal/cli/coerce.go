package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gemindex/pkg/semver"
)

// coerceCommand creates the coerce command, which applies version or
// requirement coercion to its arguments.
func (c *CLI) coerceCommand() *cobra.Command {
	var requirement, plain bool

	cmd := &cobra.Command{
		Use:   "coerce <version...>",
		Short: "Coerce RubyGems versions or requirements to semver",
		Long: `Coerce RubyGems version strings (or, with --requirement, requirement strings)
the same way the index build does.

Examples:
  gemindex coerce 1.2.3.4 2.0 1.0.0.beta2
  gemindex coerce -r "~> 4.2, >= 4.2.1"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoerce(cmd.OutOrStdout(), args, requirement, plain)
		},
	}

	cmd.Flags().BoolVarP(&requirement, "requirement", "r", false, "treat arguments as requirement strings")
	cmd.Flags().BoolVar(&plain, "plain", false, "print only the coerced values, one per line")

	return cmd
}

func runCoerce(w io.Writer, args []string, requirement, plain bool) error {
	for _, raw := range args {
		var out, form string
		if requirement {
			out = semver.CoerceRequirement(raw)
		} else {
			co := semver.Classify(raw)
			out, form = co.Version, co.Form.String()
		}

		if plain {
			fmt.Fprintln(w, out)
			continue
		}
		line := fmt.Sprintf("%-20s %s %s", raw, StyleDim.Render(iconArrow), StyleHighlight.Render(out))
		switch form {
		case "":
		case semver.FormValid.String():
			line += "  " + StyleSuccess.Render(form)
		default:
			line += "  " + StyleDim.Render(form)
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
