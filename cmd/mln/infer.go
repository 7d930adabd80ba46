package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/aretw0/mln/internal/cli"
	"github.com/aretw0/mln/internal/config"
)

var (
	queryFile string
	overrides config.Overrides
)

var inferCmd = &cobra.Command{
	Use:   "infer [query.yaml]",
	Short: "Run inference for a query file or for flags",
	Long: `Loads the model and evidence named by a query file, applies its method,
logic, grammar and parameters, and prints the resulting atom probabilities.
Flags override the values of the query file; without a file they describe
the whole query.`,
	Example: `  mln infer smokers.yaml
  mln infer --model smokers.mln --database smokers.db --query Cancer --method MCSAT`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := queryFile
		if len(args) == 1 {
			if path != "" {
				return errors.New("pass the query file either as an argument or with --config")
			}
			path = args[0]
		}
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			return app.Infer(ctx, path, overrides)
		})
	},
}

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List the inference methods, logics and grammars the engine offers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *cli.App) error {
			return app.Methods(ctx)
		})
	},
}

func init() {
	f := inferCmd.Flags()
	f.StringVarP(&queryFile, "config", "c", "", "Query file (YAML)")
	f.StringVar(&overrides.Model, "model", "", "Model file")
	f.StringVar(&overrides.Database, "database", "", "Evidence database file")
	f.StringVar(&overrides.Evidence, "evidence", "", "Inline evidence text")
	f.StringSliceVarP(&overrides.Queries, "query", "q", nil, "Query predicate or ground atom (repeatable)")
	f.StringVar(&overrides.Method, "method", "", "Inference method name")
	f.StringVar(&overrides.Logic, "logic", "", "Logic (FirstOrderLogic, FuzzyLogic)")
	f.StringVar(&overrides.Grammar, "grammar", "", "Grammar (StandardGrammar, PRACGrammar)")
	f.StringSliceVar(&overrides.ClosedWorldPredicates, "cw", nil, "Closed-world predicate (repeatable)")
	f.IntVar(&overrides.MaxSteps, "max-steps", 0, "Maximum sampling steps; 0 keeps the engine default")
	f.IntVar(&overrides.Chains, "chains", 0, "Number of chains; 0 keeps the engine default")
	f.BoolVar(&overrides.MultiCore, "multicore", false, "Let the engine use several cores")
	f.BoolVar(&overrides.Verbose, "verbose", false, "Ask the engine for verbose output")
	f.BoolVar(&overrides.MergeDatabases, "merge-dbs", false, "Merge all evidence databases")
	inferCmd.MarkFlagsMutuallyExclusive("database", "evidence")

	rootCmd.AddCommand(inferCmd, methodsCmd)
}
