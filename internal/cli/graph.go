package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gemindex/pkg/render/nodelink"
)

// graphCommand creates the graph command, which draws the dependency graph
// of an index.
func (c *CLI) graphCommand() *cobra.Command {
	var src, output, format string
	var opts nodelink.Options

	cmd := &cobra.Command{
		Use:   "graph [root]",
		Short: "Render the gem dependency graph as DOT or SVG",
		Long: `Render the dependency graph of the latest version of every gem.

With a root gem only the gems it reaches are drawn. The format follows the
output extension (.dot or .svg) unless --format is given.

Examples:
  gemindex graph rails -o rails.svg
  gemindex graph --detailed -f dot > index.dot`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Root = args[0]
			}
			if format == "" {
				format = formatFromPath(output)
			}
			if format != "dot" && format != "svg" {
				return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", format)
			}

			idx, err := c.openIndex(cmd.Context(), src)
			if err != nil {
				return err
			}
			dot, err := nodelink.ToDOT(idx, opts)
			if err != nil {
				return err
			}
			data, err := renderGraph(cmd.Context(), dot, format)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Rendered %s graph", strings.ToUpper(format))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&src, "index", "i", "", "index file or MongoDB URI (default: configured output)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: dot, svg")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label nodes with versions and edges with requirements")
	completeValues(cmd, "format", formatValues...)

	return cmd
}

// formatFromPath derives the output format from a file extension; stdout
// and unknown extensions get DOT.
func formatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return "svg"
	}
	return "dot"
}

func renderGraph(ctx context.Context, dot, format string) ([]byte, error) {
	if format == "dot" {
		return []byte(dot), nil
	}
	spinner := newSpinnerWithContext(ctx, "Rendering SVG...")
	spinner.Start()
	svg, err := nodelink.RenderSVG(ctx, dot)
	spinner.Stop()
	return svg, err
}
