package pipeline

import (
	"github.com/YuminosukeSato/scigo/linear"
	"github.com/YuminosukeSato/scigo/sklearn/lightgbm"

	"github.com/quantpool/loanroi/config"
	"github.com/quantpool/loanroi/pkg/errors"
)

// NewEstimator builds the estimator for a model configuration. All tree
// family kinds are backed by the library's gradient boosting trainer with
// parameters pinned to make each behave like its namesake: a single
// full-strength tree, a bagged ensemble, or a boosted one.
func NewEstimator(cfg config.Model) (Estimator, error) {
	switch cfg.Kind {
	case "linear":
		return linear.NewLinearRegression(), nil

	case "tree":
		lgb := boosted(cfg)
		lgb.NumIterations = 1
		lgb.LearningRate = 1.0
		if cfg.MaxDepth <= 0 {
			lgb.MaxDepth = 8
		}
		return lgb, nil

	case "forest":
		lgb := boosted(cfg)
		// Unit learning rate plus row and column subsampling gives a
		// bagged ensemble rather than a boosted one.
		lgb.LearningRate = 1.0
		if cfg.Subsample <= 0 {
			lgb.Subsample = 0.7
		}
		if cfg.ColsampleBytree <= 0 {
			lgb.ColsampleBytree = 0.7
		}
		lgb.SubsampleFreq = 1
		return lgb, nil

	case "gbm":
		return boosted(cfg), nil

	case "lightgbm":
		lgb := boosted(cfg)
		if cfg.NumLeaves <= 0 {
			lgb.NumLeaves = 63
		}
		return lgb, nil

	default:
		return nil, errors.NewValidationError("kind", "unknown estimator kind", cfg.Kind)
	}
}

// boosted creates a gradient boosting regressor with the configured
// hyperparameters passed through to the library. Thread count is a pure
// pass-through: the pipeline itself never parallelizes.
func boosted(cfg config.Model) *lightgbm.LGBMRegressor {
	lgb := lightgbm.NewLGBMRegressor().WithDeterministic(true)

	if cfg.NumIterations > 0 {
		lgb.NumIterations = cfg.NumIterations
	}
	if cfg.LearningRate > 0 {
		lgb.LearningRate = cfg.LearningRate
	}
	if cfg.NumLeaves > 0 {
		lgb.NumLeaves = cfg.NumLeaves
	}
	if cfg.MaxDepth > 0 {
		lgb.MaxDepth = cfg.MaxDepth
	}
	if cfg.Subsample > 0 {
		lgb.Subsample = cfg.Subsample
	}
	if cfg.ColsampleBytree > 0 {
		lgb.ColsampleBytree = cfg.ColsampleBytree
	}
	if cfg.Seed != 0 {
		lgb.RandomState = cfg.Seed
	}
	if cfg.Threads != 0 {
		lgb.NumThreads = cfg.Threads
	}
	return lgb
}
