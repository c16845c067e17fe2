// Package pipeline trains the configured estimators and turns their
// predictions into simulation tables. It is a thin orchestration layer:
// the learning itself is delegated entirely to the underlying ML library.
package pipeline

import (
	"gonum.org/v1/gonum/mat"

	"github.com/quantpool/loanroi/dataset"
	"github.com/quantpool/loanroi/pkg/errors"
	"github.com/quantpool/loanroi/sim"
)

// Estimator is the minimal capability the pipeline demands of a regression
// model. Any conforming implementation can be substituted; nothing here
// depends on a concrete estimator type.
type Estimator interface {
	Fit(X, y mat.Matrix) error
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Model binds a named estimator to the feature schema it was trained on.
// The schema recorded at training time is what makes drift at predict time
// detectable.
type Model struct {
	Name      string
	Estimator Estimator

	schema []string
}

// Train fits the model on the training matrix and target vector. The
// inputs are not modified; successive Train calls on different models
// share nothing. A panic inside the underlying library surfaces as an
// error, any fitting error is propagated unchanged.
func (m *Model) Train(X *dataset.Matrix, y *mat.VecDense) (err error) {
	defer errors.Recover(&err, "pipeline.Train")

	if X == nil || X.Rows() == 0 {
		return errors.ErrEmptyData
	}
	if X.Rows() != y.Len() {
		return errors.NewDimensionError("Train", X.Rows(), y.Len(), 0)
	}

	if err := m.Estimator.Fit(X.X, y); err != nil {
		return err
	}
	m.schema = X.Columns
	return nil
}

// Predict applies the fitted estimator to a feature matrix and returns one
// prediction per row, tagged with the row's loan id. The estimator and the
// matrix are left untouched. A column set differing from the training
// schema is reported as a configuration error.
func (m *Model) Predict(X *dataset.Matrix) (preds sim.Predictions, err error) {
	defer errors.Recover(&err, "pipeline.Predict")

	if m.schema == nil {
		return sim.Predictions{}, errors.NewNotFittedError(m.Name, "Predict")
	}
	if err := m.checkSchema(X); err != nil {
		return sim.Predictions{}, err
	}

	out, err := m.Estimator.Predict(X.X)
	if err != nil {
		return sim.Predictions{}, err
	}

	rows, cols := out.Dims()
	if rows != X.Rows() {
		return sim.Predictions{}, errors.NewDimensionError("Predict", X.Rows(), rows, 0)
	}
	if cols != 1 {
		return sim.Predictions{}, errors.NewDimensionError("Predict", 1, cols, 1)
	}

	values := make([]float64, rows)
	for i := 0; i < rows; i++ {
		values[i] = out.At(i, 0)
	}
	ids := make([]int64, len(X.IDs))
	copy(ids, X.IDs)
	return sim.Predictions{IDs: ids, Values: values}, nil
}

func (m *Model) checkSchema(X *dataset.Matrix) error {
	if len(m.schema) != len(X.Columns) {
		return errors.NewSchemaError(m.Name+".Predict", m.schema, X.Columns)
	}
	for i, c := range m.schema {
		if X.Columns[i] != c {
			return errors.NewSchemaError(m.Name+".Predict", m.schema, X.Columns)
		}
	}
	return nil
}
