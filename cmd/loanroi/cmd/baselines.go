package cmd

import (
	"github.com/spf13/cobra"

	"github.com/quantpool/loanroi/config"
	"github.com/quantpool/loanroi/pipeline"
)

var baselinesCmd = &cobra.Command{
	Use:   "baselines",
	Short: "Write only the baseline simulation tables",
	Long: `Baselines skips model training and writes the three non-learned
simulation tables: pick by highest interest rate, pick by lowest
interest rate, and a seeded uniform random score.

Example:
  loanroi baselines --loans loans.csv.gz --outcomes roi.csv.gz -o artifacts`,
	RunE: runBaselines,
}

var (
	blLoans    string
	blOutcomes string
	blOut      string
	blSeed     int64
)

func init() {
	rootCmd.AddCommand(baselinesCmd)

	baselinesCmd.Flags().StringVar(&blLoans, "loans", "", "path to the loan table CSV (.gz supported)")
	baselinesCmd.Flags().StringVar(&blOutcomes, "outcomes", "", "path to the loan id,roi outcome CSV (.gz supported)")
	baselinesCmd.Flags().StringVarP(&blOut, "out", "o", "", "directory for simulation table artifacts")
	baselinesCmd.Flags().Int64Var(&blSeed, "seed", 0, "seed for the random baseline (0 keeps the configured seed)")
}

func runBaselines(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if blLoans != "" {
		cfg.Data.Loans = blLoans
	}
	if blOutcomes != "" {
		cfg.Data.Outcomes = blOutcomes
	}
	if blOut != "" {
		cfg.Output.Dir = blOut
	}
	if blSeed != 0 {
		cfg.Baselines.Seed = blSeed
	}
	cfg.Models = []config.Model{}
	cfg.Baselines.Enabled = true
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg)
	return pipeline.NewRunner(cfg, logger).Run()
}
