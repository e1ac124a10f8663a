package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// browseCommand creates the browse command, an interactive index viewer.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [index]",
		Short: "Browse an index interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src string
			if len(args) == 1 {
				src = args[0]
			}
			idx, err := c.openIndex(cmd.Context(), src)
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewGemListModel(idx), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}
