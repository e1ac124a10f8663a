package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gemindex/internal/api"
)

// serveCommand creates the serve command, which exposes an index over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var src, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an index over HTTP",
		Long: `Serve a built index as a read-only JSON API.

Routes:
  GET /healthz
  GET /gems?q=<substring>
  GET /gems/{name}
  GET /gems/{name}/versions/{version}
  GET /index`,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := c.openIndex(cmd.Context(), src)
			if err != nil {
				return err
			}
			printInfo("Listening on %s", StyleLink.Render("http://"+addr))
			return api.New(idx, c.Logger).ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVarP(&src, "index", "i", "", "index file or MongoDB URI (default: configured output)")
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")

	return cmd
}
