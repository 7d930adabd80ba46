package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/mln/internal/cli"
	"github.com/aretw0/mln/internal/presentation/tui"
)

var opts cli.Options

var rootCmd = &cobra.Command{
	Use:   "mln",
	Short: "mln runs probabilistic inference over Markov logic networks",
	Long: `mln loads a Markov logic network and its evidence, compiles them on an
inference engine and prints the probability of every queried atom.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// withApp builds the application for a command and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(context.Context, *cli.App) error) error {
	app, err := cli.NewApp(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	runErr := fn(cmd.Context(), app)
	if err := app.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.Engine, "engine", "", "Inference engine: memory or process (overrides the query file)")
	flags.StringVar(&opts.BridgeConfig, "bridge", "", "Path to a bridge.yaml describing the engine process")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")
	flags.StringVar(&opts.LogFormat, "log-format", "text", "Log format (text or json)")
	flags.BoolVar(&opts.Debug, "debug", false, "Log every compile and inference event")
	flags.BoolVar(&opts.JSON, "json", false, "Print results as JSON")
	flags.BoolVar(&opts.Plain, "plain", false, "Disable Markdown rendering on terminals")
	flags.StringVar(&opts.SessionID, "session", "", "Session ID (defaults to the project ID)")
	flags.StringVar(&opts.RedisURL, "redis", "", "Redis URL for an engine lock shared between processes")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
}
