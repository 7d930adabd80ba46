package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/mln"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mln",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mln version %s\n", strings.TrimSpace(mln.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
