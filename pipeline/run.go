package pipeline

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/oklog/ulid/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/quantpool/loanroi/artifact"
	"github.com/quantpool/loanroi/config"
	"github.com/quantpool/loanroi/dataset"
	"github.com/quantpool/loanroi/pkg/errors"
	"github.com/quantpool/loanroi/pkg/log"
	"github.com/quantpool/loanroi/sim"
)

// Runner executes one full pipeline run: load, clean, encode, fill,
// partition, then train and export every configured model plus the
// baseline strategies. Execution is single threaded and strictly
// sequential; whatever parallelism happens inside an estimator is the
// library's business.
type Runner struct {
	cfg    *config.Config
	logger log.Logger
	writer *artifact.Writer
}

// NewRunner creates a Runner for the given configuration.
func NewRunner(cfg *config.Config, logger log.Logger) *Runner {
	if logger == nil {
		logger = log.Nop()
	}
	return &Runner{
		cfg:    cfg,
		logger: logger,
		writer: artifact.NewWriter(cfg.Output.Dir, logger),
	}
}

// Run executes the pipeline. A failure in one model is logged and isolated
// so the remaining models still run; Run reports an error only when the
// shared preparation fails or every single strategy fails.
func (r *Runner) Run() error {
	runID := ulid.Make().String()
	logger := r.logger.With("run_id", runID)

	prep, err := r.prepare(logger)
	if err != nil {
		return err
	}

	succeeded, failed := 0, 0
	for _, mc := range r.cfg.Models {
		if err := r.runModel(logger, mc, prep); err != nil {
			logger.Error("model run failed", "err", err, "model", mc.Name)
			failed++
			continue
		}
		succeeded++
	}

	if r.cfg.Baselines.Enabled {
		if err := r.runBaselines(logger, prep); err != nil {
			logger.Error("baseline run failed", "err", err)
			failed++
		} else {
			succeeded++
		}
	}

	logger.Info("run finished", "succeeded", succeeded, "failed", failed)
	if succeeded == 0 {
		return errors.Newf("all %d strategies failed", failed)
	}
	return nil
}

// prepared carries the shared read-only state every model run consumes.
// Nothing downstream is allowed to mutate these in place.
type prepared struct {
	test   dataframe.DataFrame
	trainM *dataset.Matrix
	testM  *dataset.Matrix
	y      *mat.VecDense
}

func (r *Runner) prepare(logger log.Logger) (*prepared, error) {
	loans, err := dataset.LoadLoans(r.cfg.Data.Loans)
	if err != nil {
		return nil, errors.Wrap(err, "load loan table")
	}
	outcomes, err := dataset.LoadOutcomes(r.cfg.Data.Outcomes)
	if err != nil {
		return nil, errors.Wrap(err, "load outcome map")
	}
	logger.Info("loaded inputs", "loans", loans.Nrow(), "outcomes", len(outcomes))

	df, err := dataset.Clean(loans)
	if err != nil {
		return nil, errors.Wrap(err, "clean loan table")
	}

	enc := dataset.NewDummyEncoder(dataset.ColID, dataset.ColIssueDate, dataset.ColTarget)
	df, err = enc.FitTransform(df)
	if err != nil {
		return nil, errors.Wrap(err, "encode categoricals")
	}
	df, err = dataset.FillMissing(df, dataset.MissingSentinel)
	if err != nil {
		return nil, errors.Wrap(err, "fill missing values")
	}

	train, test, err := dataset.Partition(df, outcomes)
	if err != nil {
		return nil, errors.Wrap(err, "partition loans")
	}
	if train.Nrow() == 0 || test.Nrow() == 0 {
		return nil, errors.NewValidationError("partition",
			"both training and testing subsets must be non-empty",
			fmt.Sprintf("train=%d test=%d", train.Nrow(), test.Nrow()))
	}
	logger.Info("partitioned loans",
		"train", train.Nrow(),
		"test", test.Nrow(),
		"categoricals", enc.Columns(),
	)

	trainDf, err := dataset.WithOutcomes(train, outcomes)
	if err != nil {
		return nil, err
	}
	trainM, y, err := dataset.FeaturesTarget(trainDf)
	if err != nil {
		return nil, errors.Wrap(err, "build training matrix")
	}
	testM, err := dataset.Features(test)
	if err != nil {
		return nil, errors.Wrap(err, "build testing matrix")
	}
	if err := trainM.SameSchema(testM); err != nil {
		return nil, err
	}

	return &prepared{test: test, trainM: trainM, testM: testM, y: y}, nil
}

func (r *Runner) runModel(logger log.Logger, mc config.Model, prep *prepared) error {
	est, err := NewEstimator(mc)
	if err != nil {
		return err
	}
	model := &Model{Name: mc.Name, Estimator: est}
	logger = logger.With("model", mc.Name, "kind", mc.Kind)

	if n := holdoutRows(prep.trainM.Rows(), r.cfg.Eval.Holdout); n > 0 {
		if err := r.evaluate(logger, model, prep, n); err != nil {
			return err
		}
	}

	if err := model.Train(prep.trainM, prep.y); err != nil {
		return errors.Wrap(err, "fit model")
	}
	preds, err := model.Predict(prep.testM)
	if err != nil {
		return errors.Wrap(err, "predict test set")
	}

	table, err := sim.Build(prep.test, preds)
	if err != nil {
		return errors.Wrap(err, "build simulation table")
	}
	if _, err := r.writer.Write(mc.Name, table); err != nil {
		return errors.Wrap(err, "write artifact")
	}
	return nil
}

// evaluate fits the model on all training rows except the newest n and
// scores it on those held-out rows. The model is refitted on the full
// training set afterwards, so evaluation never costs training data.
func (r *Runner) evaluate(logger log.Logger, model *Model, prep *prepared, n int) error {
	total := prep.trainM.Rows()
	head := prep.trainM.Head(total - n)
	tail := prep.trainM.Tail(n)
	yHead := prep.y.SliceVec(0, total-n).(*mat.VecDense)
	yTail := prep.y.SliceVec(total-n, total).(*mat.VecDense)

	if err := model.Train(head, yHead); err != nil {
		return errors.Wrap(err, "fit holdout model")
	}
	m, yPred, err := Evaluate(model, tail, yTail)
	if err != nil {
		return errors.Wrap(err, "evaluate holdout")
	}
	logger.Info("holdout evaluation",
		"rows", n,
		"mae", m.MAE,
		"rmse", m.RMSE,
		"r2", m.R2,
	)

	if r.cfg.Output.Plots != "" {
		if err := os.MkdirAll(r.cfg.Output.Plots, 0o755); err != nil {
			return errors.Wrap(err, "create plot directory")
		}
		yTrue := make([]float64, n)
		for i := 0; i < n; i++ {
			yTrue[i] = yTail.AtVec(i)
		}
		path := filepath.Join(r.cfg.Output.Plots, model.Name+"_holdout.png")
		if err := SaveScatter(path, model.Name, yTrue, yPred); err != nil {
			// A broken plot is not worth failing the model run over.
			logger.Warn("could not save holdout plot", "err", err, "path", path)
		}
	}
	return nil
}

func holdoutRows(total int, frac float64) int {
	if frac <= 0 {
		return 0
	}
	n := int(float64(total) * frac)
	// Need at least 2 rows on each side for fitting and scoring to make
	// sense.
	if n < 2 || total-n < 2 {
		return 0
	}
	return n
}

func (r *Runner) runBaselines(logger log.Logger, prep *prepared) error {
	bc := r.cfg.Baselines

	high, err := sim.HighInterest(prep.test)
	if err != nil {
		return errors.Wrap(err, "high-interest baseline")
	}
	if err := r.writeBaseline(logger, "high_interest", prep.test, high); err != nil {
		return err
	}

	low, err := sim.LowInterest(prep.test)
	if err != nil {
		return errors.Wrap(err, "low-interest baseline")
	}
	if err := r.writeBaseline(logger, "low_interest", prep.test, low); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(bc.Seed))
	random, err := sim.RandomUniform(prep.test, rng, bc.Low, bc.High)
	if err != nil {
		return errors.Wrap(err, "random baseline")
	}
	return r.writeBaseline(logger, "random_pick", prep.test, random)
}

func (r *Runner) writeBaseline(logger log.Logger, name string, test dataframe.DataFrame, preds sim.Predictions) error {
	table, err := sim.Build(test, preds)
	if err != nil {
		return errors.Wrapf(err, "build %s table", name)
	}
	if _, err := r.writer.Write(name, table); err != nil {
		return errors.Wrapf(err, "write %s artifact", name)
	}
	logger.Info("wrote baseline", "strategy", name, "rows", table.Len())
	return nil
}
