package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mln/internal/cli"
)

// bridgeCmd speaks the bridge protocol on stdin/stdout with the in-memory
// engine, so `--bridge` can point at mln itself for dry runs.
var bridgeCmd = &cobra.Command{
	Use:    "bridge",
	Short:  "Answer one engine bridge request using the in-memory engine",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ServeBridge(cmd.Context(), os.Stdin, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
}
