package pipeline

import (
	"reflect"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"

	"github.com/quantpool/loanroi/config"
	"github.com/quantpool/loanroi/dataset"
	loanerrors "github.com/quantpool/loanroi/pkg/errors"
)

// fakeEstimator is a stand-in for a third-party regressor. It predicts a
// constant and records how it was called.
type fakeEstimator struct {
	constant float64
	fitErr   error
	panicMsg string

	fitCalls     int
	predictCalls int
	fitRows      int
}

func (f *fakeEstimator) Fit(X, y mat.Matrix) error {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.fitCalls++
	f.fitRows, _ = X.Dims()
	return f.fitErr
}

func (f *fakeEstimator) Predict(X mat.Matrix) (mat.Matrix, error) {
	f.predictCalls++
	rows, _ := X.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		out.Set(i, 0, f.constant)
	}
	return out, nil
}

func featuresFrom(t *testing.T, records [][]string) *dataset.Matrix {
	t.Helper()
	df := dataframe.LoadRecords(records, dataframe.DetectTypes(true))
	if df.Err != nil {
		t.Fatalf("failed to build table: %v", df.Err)
	}
	m, err := dataset.Features(df)
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}
	return m
}

func trainMatrix(t *testing.T) (*dataset.Matrix, *mat.VecDense) {
	m := featuresFrom(t, [][]string{
		{"id", "int_rate", "loan_amnt"},
		{"1", "10.0", "5000"},
		{"2", "11.0", "6000"},
		{"3", "12.0", "7000"},
	})
	return m, mat.NewVecDense(3, []float64{1.5, -0.5, 2.0})
}

func TestModel_TrainPredict(t *testing.T) {
	X, y := trainMatrix(t)
	fake := &fakeEstimator{constant: 3.5}
	model := &Model{Name: "fake", Estimator: fake}

	if err := model.Train(X, y); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if fake.fitCalls != 1 || fake.fitRows != 3 {
		t.Errorf("unexpected fit calls: %d rows=%d", fake.fitCalls, fake.fitRows)
	}

	preds, err := model.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if !reflect.DeepEqual(preds.IDs, []int64{1, 2, 3}) {
		t.Errorf("prediction ids misaligned: %v", preds.IDs)
	}
	if !reflect.DeepEqual(preds.Values, []float64{3.5, 3.5, 3.5}) {
		t.Errorf("unexpected predictions: %v", preds.Values)
	}
}

func TestModel_PredictBeforeTrain(t *testing.T) {
	X, _ := trainMatrix(t)
	model := &Model{Name: "fake", Estimator: &fakeEstimator{}}

	_, err := model.Predict(X)
	var nf *loanerrors.NotFittedError
	if !loanerrors.As(err, &nf) {
		t.Fatalf("expected NotFittedError, got %T: %v", err, err)
	}
}

func TestModel_TrainRowMismatch(t *testing.T) {
	X, _ := trainMatrix(t)
	model := &Model{Name: "fake", Estimator: &fakeEstimator{}}

	err := model.Train(X, mat.NewVecDense(2, []float64{1, 2}))
	var de *loanerrors.DimensionError
	if !loanerrors.As(err, &de) {
		t.Fatalf("expected DimensionError, got %T: %v", err, err)
	}
}

func TestModel_TrainPropagatesEstimatorError(t *testing.T) {
	X, y := trainMatrix(t)
	boom := loanerrors.New("singular matrix")
	model := &Model{Name: "fake", Estimator: &fakeEstimator{fitErr: boom}}

	err := model.Train(X, y)
	if !loanerrors.Is(err, boom) {
		t.Fatalf("estimator error should propagate unchanged, got %v", err)
	}
}

func TestModel_TrainRecoversPanic(t *testing.T) {
	X, y := trainMatrix(t)
	model := &Model{Name: "fake", Estimator: &fakeEstimator{panicMsg: "library bug"}}

	err := model.Train(X, y)
	if err == nil {
		t.Fatal("expected error from panicking estimator")
	}
	var pe *loanerrors.PanicError
	if !loanerrors.As(err, &pe) {
		t.Fatalf("expected PanicError, got %T: %v", err, err)
	}
}

func TestModel_PredictDetectsSchemaDrift(t *testing.T) {
	X, y := trainMatrix(t)
	model := &Model{Name: "fake", Estimator: &fakeEstimator{}}
	if err := model.Train(X, y); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	drifted := featuresFrom(t, [][]string{
		{"id", "loan_amnt", "int_rate"}, // columns reordered
		{"4", "8000", "13.0"},
	})

	_, err := model.Predict(drifted)
	var se *loanerrors.SchemaError
	if !loanerrors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %T: %v", err, err)
	}
}

func configModel(kind string) config.Model {
	return config.Model{Name: kind, Kind: kind, Seed: 42}
}

func TestNewEstimator_Kinds(t *testing.T) {
	for _, kind := range []string{"tree", "forest", "gbm", "lightgbm", "linear"} {
		est, err := NewEstimator(configModel(kind))
		if err != nil {
			t.Errorf("NewEstimator(%s) failed: %v", kind, err)
		}
		if est == nil {
			t.Errorf("NewEstimator(%s) returned nil", kind)
		}
	}

	if _, err := NewEstimator(configModel("catboost-gpu")); err == nil {
		t.Error("expected error for unknown kind")
	}
}
