package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/quantpool/loanroi/config"
	"github.com/quantpool/loanroi/pkg/log"
)

var rootCmd = &cobra.Command{
	Use:   "loanroi",
	Short: "Loan ROI regression pipeline and simulation table builder",
	Long: `Loanroi trains regression models that predict the return on investment
of individual loans and exports simulation tables for backtesting
portfolio strategies.

It provides tools for:
  - Cleaning and encoding a historical loan table
  - Training a configurable set of regression models
  - Scoring out-of-sample loans and writing per-model simulation tables
  - Producing high-interest, low-interest and random baseline tables`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var (
	cfgFile  string
	logLevel string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// loadConfig builds the effective configuration: file if given, defaults
// otherwise, with command line flags layered on top.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) log.Logger {
	return log.New(os.Stderr, cfg.LogLevel)
}
