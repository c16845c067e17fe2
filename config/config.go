// Package config loads and validates the pipeline run configuration.
package config

import (
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quantpool/loanroi/pkg/errors"
)

// Config is the complete configuration for one pipeline run.
type Config struct {
	Data      DataConfig     `json:"data" yaml:"data"`
	Output    OutputConfig   `json:"output" yaml:"output"`
	Models    []Model        `json:"models" yaml:"models"`
	Baselines BaselineConfig `json:"baselines" yaml:"baselines"`
	Eval      EvalConfig     `json:"eval" yaml:"eval"`
	LogLevel  string         `json:"log_level" yaml:"log_level"`
}

// DataConfig points at the two input artifacts.
type DataConfig struct {
	// Loans is the path to the compressed loan table (CSV, gzip when the
	// path ends in .gz).
	Loans string `json:"loans" yaml:"loans"`
	// Outcomes is the path to the compressed loan id -> realized ROI map.
	Outcomes string `json:"outcomes" yaml:"outcomes"`
}

// OutputConfig controls where artifacts land.
type OutputConfig struct {
	Dir   string `json:"dir" yaml:"dir"`
	Plots string `json:"plots,omitempty" yaml:"plots,omitempty"`
}

// Model configures one estimator. Kind selects the estimator family;
// the remaining fields are passed through to the underlying library.
type Model struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"` // tree, forest, gbm, lightgbm, linear

	NumIterations   int     `json:"num_iterations,omitempty" yaml:"num_iterations,omitempty"`
	LearningRate    float64 `json:"learning_rate,omitempty" yaml:"learning_rate,omitempty"`
	NumLeaves       int     `json:"num_leaves,omitempty" yaml:"num_leaves,omitempty"`
	MaxDepth        int     `json:"max_depth,omitempty" yaml:"max_depth,omitempty"`
	Subsample       float64 `json:"subsample,omitempty" yaml:"subsample,omitempty"`
	ColsampleBytree float64 `json:"colsample_bytree,omitempty" yaml:"colsample_bytree,omitempty"`
	Seed            int     `json:"seed,omitempty" yaml:"seed,omitempty"`
	// Threads is passed through to the estimator; <= 0 means use all
	// available cores. The pipeline itself stays single threaded.
	Threads int `json:"threads,omitempty" yaml:"threads,omitempty"`
}

// BaselineConfig controls the non-learned strategies.
type BaselineConfig struct {
	Enabled bool  `json:"enabled" yaml:"enabled"`
	Seed    int64 `json:"seed" yaml:"seed"`
	// Low and High bound the random baseline's uniform draw, [Low, High).
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// EvalConfig controls the holdout evaluation done on training data before
// the full fit.
type EvalConfig struct {
	// Holdout is the fraction of training rows withheld for metrics,
	// taken from the tail of the issue-date-ordered table. Zero disables
	// evaluation.
	Holdout float64 `json:"holdout" yaml:"holdout"`
}

// Default returns a configuration with the standard model set.
func Default() *Config {
	return &Config{
		Output: OutputConfig{Dir: "artifacts"},
		Models: []Model{
			{Name: "tree", Kind: "tree", MaxDepth: 8},
			{Name: "forest", Kind: "forest", NumIterations: 100},
			{Name: "gbm", Kind: "gbm", NumIterations: 100, LearningRate: 0.1},
			{Name: "lgbm", Kind: "lightgbm", NumIterations: 200, LearningRate: 0.05, NumLeaves: 63},
			{Name: "linear", Kind: "linear"},
		},
		Baselines: BaselineConfig{Enabled: true, Seed: 42, Low: 50, High: 60},
		Eval:      EvalConfig{Holdout: 0.1},
		LogLevel:  "info",
	}
}

// LoadFromFile loads a configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	cfg := Default()
	// Try YAML first, fall back to JSON.
	if yamlErr := yaml.Unmarshal(data, cfg); yamlErr != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, errors.Wrap(yamlErr, "parse config (tried YAML and JSON)")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validKinds = map[string]bool{
	"tree":     true,
	"forest":   true,
	"gbm":      true,
	"lightgbm": true,
	"linear":   true,
}

// Validate checks the configuration for problems that would otherwise
// surface halfway through a run.
func (c *Config) Validate() error {
	if c.Data.Loans == "" {
		return errors.NewValidationError("data.loans", "loan table path is required", c.Data.Loans)
	}
	if c.Data.Outcomes == "" {
		return errors.NewValidationError("data.outcomes", "outcome map path is required", c.Data.Outcomes)
	}
	if c.Output.Dir == "" {
		return errors.NewValidationError("output.dir", "artifact directory is required", c.Output.Dir)
	}
	if c.Eval.Holdout < 0 || c.Eval.Holdout >= 1 {
		return errors.NewValidationError("eval.holdout", "must be in [0, 1)", c.Eval.Holdout)
	}
	if c.Baselines.Enabled && c.Baselines.High <= c.Baselines.Low {
		return errors.NewValidationError("baselines", "high must exceed low", c.Baselines)
	}

	seen := map[string]bool{}
	for _, m := range c.Models {
		if m.Name == "" {
			return errors.NewValidationError("models.name", "model name is required", m)
		}
		if seen[m.Name] {
			return errors.NewValidationError("models.name", "duplicate model name", m.Name)
		}
		seen[m.Name] = true
		if !validKinds[m.Kind] {
			return errors.NewValidationError("models.kind", "unknown estimator kind", m.Kind)
		}
	}
	return nil
}
