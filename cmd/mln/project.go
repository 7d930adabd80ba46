package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/mln/internal/cli"
)

var projectDir string

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Work with query projects stored as Markdown documents",
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the projects in the project directory",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			return app.ListProjects(ctx, projectDir)
		})
	},
}

var projectCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate every project without running the engine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			return app.CheckProjects(ctx, projectDir)
		})
	},
}

var projectRunCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Run inference for a stored project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			return app.RunProject(ctx, projectDir, args[0])
		})
	},
}

func init() {
	projectCmd.PersistentFlags().StringVar(&projectDir, "dir", ".", "Directory containing the projects")
	projectCmd.AddCommand(projectListCmd, projectCheckCmd, projectRunCmd)
	rootCmd.AddCommand(projectCmd)
}
