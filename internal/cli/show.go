package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	gemerrors "github.com/matzehuels/gemindex/pkg/errors"
	"github.com/matzehuels/gemindex/pkg/index"
	gemio "github.com/matzehuels/gemindex/pkg/io"
)

// showCommand creates the show command, which prints one gem of an index.
func (c *CLI) showCommand() *cobra.Command {
	var src string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <gem>",
		Short: "Show the indexed versions of a gem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := c.openIndex(cmd.Context(), src)
			if err != nil {
				return err
			}
			g, ok := idx.Find(args[0])
			if !ok {
				return gemerrors.New(gemerrors.ErrCodeNotFound, "gem %q not in index", args[0])
			}
			if asJSON {
				return writeEntriesJSON(cmd.OutOrStdout(), g.Entries)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderGem(g))
			return nil
		},
	}

	cmd.Flags().StringVarP(&src, "index", "i", "", "index file or MongoDB URI (default: configured output)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the entries as JSON")

	return cmd
}

// openIndex loads src, or the configured output when src is empty.
func (c *CLI) openIndex(ctx context.Context, src string) (*index.Index, error) {
	if src == "" {
		cfg, err := c.loadConfig()
		if err != nil {
			return nil, err
		}
		src = cfg.Output
	}
	prog := newProgress(c.Logger)
	idx, err := gemio.Load(ctx, src)
	if err != nil {
		return nil, gemerrors.Wrap(gemerrors.ErrCodeInvalidInput, err, "load index %s", src)
	}
	prog.done(fmt.Sprintf("Loaded %d gems from %s", idx.Len(), src))
	return idx, nil
}

// renderGem formats the entries of g as a table, newest version last.
func renderGem(g index.Gem) string {
	rows := make([][]string, 0, len(g.Entries))
	for _, e := range g.Entries {
		rows = append(rows, []string{e.Version, formatDependencies(e.Dependencies)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Version", "Dependencies").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			default:
				return StyleValue
			}
		})

	title := StyleTitle.Render(g.Name) + " " + StyleDim.Render(fmt.Sprintf("(%d versions)", len(g.Entries)))
	return title + "\n" + t.Render()
}

// formatDependencies joins deps as "name req" pairs in name order.
func formatDependencies(deps map[string]string) string {
	if len(deps) == 0 {
		return "—"
	}
	parts := make([]string, 0, len(deps))
	for _, name := range slices.Sorted(maps.Keys(deps)) {
		parts = append(parts, strings.TrimRight(name, "\x00")+" "+deps[name])
	}
	return strings.Join(parts, "\n")
}

func writeEntriesJSON(w io.Writer, entries []index.Entry) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
