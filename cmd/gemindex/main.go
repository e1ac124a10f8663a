// Command gemindex builds and serves a semver-normalized index of RubyGems.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gemindex/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := run(ctx)
	code := cli.ExitCode(err)
	if err != nil && code != cli.ExitInterrupted {
		fmt.Fprintf(os.Stderr, "gemindex: %v\n", err)
	}
	os.Exit(code)
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log registry requests and cache hits")

	next := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if next != nil {
			return next(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
