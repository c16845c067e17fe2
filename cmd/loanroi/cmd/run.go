package cmd

import (
	"github.com/spf13/cobra"

	"github.com/quantpool/loanroi/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Train the configured models and write their simulation tables",
	Long: `Run executes the full pipeline: load the loan table and outcome map,
clean and encode the loans, train every configured model on the loans
with a known outcome, score the rest, and write one compressed
simulation table per model. Baseline tables are written as well unless
disabled in the configuration.

Example:
  loanroi run -c pipeline.yaml --loans loans.csv.gz --outcomes roi.csv.gz`,
	RunE: runPipeline,
}

var (
	runLoans    string
	runOutcomes string
	runOut      string
	runPlots    string
	runHoldout  float64
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runLoans, "loans", "", "path to the loan table CSV (.gz supported)")
	runCmd.Flags().StringVar(&runOutcomes, "outcomes", "", "path to the loan id,roi outcome CSV (.gz supported)")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "directory for simulation table artifacts")
	runCmd.Flags().StringVar(&runPlots, "plots", "", "directory for holdout scatter plots (empty disables plots)")
	runCmd.Flags().Float64Var(&runHoldout, "holdout", -1, "fraction of training rows held out for evaluation")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runLoans != "" {
		cfg.Data.Loans = runLoans
	}
	if runOutcomes != "" {
		cfg.Data.Outcomes = runOutcomes
	}
	if runOut != "" {
		cfg.Output.Dir = runOut
	}
	if runPlots != "" {
		cfg.Output.Plots = runPlots
	}
	if runHoldout >= 0 {
		cfg.Eval.Holdout = runHoldout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg)
	return pipeline.NewRunner(cfg, logger).Run()
}
