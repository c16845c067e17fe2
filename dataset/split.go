package dataset

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/quantpool/loanroi/pkg/errors"
)

// LoanIDs extracts the id column as int64 loan identifiers.
func LoanIDs(df dataframe.DataFrame) ([]int64, error) {
	if !hasColumn(df, ColID) {
		return nil, errors.NewValidationError(ColID, "column is required", df.Names())
	}
	s := df.Col(ColID)
	ids := make([]int64, s.Len())
	for i := 0; i < s.Len(); i++ {
		v, err := s.Elem(i).Int()
		if err != nil {
			return nil, errors.NewValidationError(ColID, "loan id is not an integer", s.Elem(i).String())
		}
		ids[i] = int64(v)
	}
	return ids, nil
}

// Partition splits the loan table into the training subset (loan id present
// in the outcome map) and the testing subset (loan id absent). The two
// subsets are disjoint and together cover every input row, in input order.
func Partition(df dataframe.DataFrame, outcomes map[int64]float64) (train, test dataframe.DataFrame, err error) {
	ids, err := LoanIDs(df)
	if err != nil {
		return df, df, err
	}

	trainIdx := make([]int, 0, len(ids))
	testIdx := make([]int, 0, len(ids))
	for i, id := range ids {
		if _, ok := outcomes[id]; ok {
			trainIdx = append(trainIdx, i)
		} else {
			testIdx = append(testIdx, i)
		}
	}

	train = df.Subset(trainIdx)
	if train.Err != nil {
		return train, test, errors.Wrap(train.Err, "subset training rows")
	}
	test = df.Subset(testIdx)
	if test.Err != nil {
		return train, test, errors.Wrap(test.Err, "subset testing rows")
	}
	return train, test, nil
}

// WithOutcomes joins the realized ROI onto a training table as the target
// column. Every row's loan id must be present in the outcome map.
func WithOutcomes(df dataframe.DataFrame, outcomes map[int64]float64) (dataframe.DataFrame, error) {
	ids, err := LoanIDs(df)
	if err != nil {
		return df, err
	}
	rois := make([]float64, len(ids))
	for i, id := range ids {
		roi, ok := outcomes[id]
		if !ok {
			return df, errors.NewMissingTargetError(id)
		}
		rois[i] = roi
	}
	df = df.Mutate(series.New(rois, series.Float, ColTarget))
	if df.Err != nil {
		return df, errors.Wrap(df.Err, "join outcomes")
	}
	return df, nil
}

// Matrix is a feature matrix with the row and column identity the
// estimators themselves do not carry: loan ids aligned to rows, feature
// names aligned to columns. Predictions travel with the ids so downstream
// alignment is checked instead of assumed.
type Matrix struct {
	X       *mat.Dense
	IDs     []int64
	Columns []string
}

// featureColumns returns the columns of df that enter the feature matrix,
// in table order.
func featureColumns(df dataframe.DataFrame) []string {
	names := df.Names()
	cols := make([]string, 0, len(names))
	for _, name := range names {
		if name == ColID || name == ColIssueDate || name == ColTarget {
			continue
		}
		cols = append(cols, name)
	}
	return cols
}

// Features builds the feature matrix from a prepared table. The id, issue
// date and target columns are excluded. A string column or a remaining
// absent value is a data error: encoding and filling must run first.
func Features(df dataframe.DataFrame) (*Matrix, error) {
	if df.Nrow() == 0 {
		return nil, errors.ErrEmptyData
	}
	ids, err := LoanIDs(df)
	if err != nil {
		return nil, err
	}

	cols := featureColumns(df)
	if len(cols) == 0 {
		return nil, errors.NewValidationError("features", "table has no feature columns", df.Names())
	}

	n := df.Nrow()
	X := mat.NewDense(n, len(cols), nil)
	for j, name := range cols {
		s := df.Col(name)
		if s.Type() == series.String {
			return nil, errors.NewValidationError(name, "categorical column survived encoding", s.Type())
		}
		vals := s.Float()
		for i, v := range vals {
			if math.IsNaN(v) {
				return nil, errors.NewValidationError(name, "absent value survived filling", i)
			}
			X.Set(i, j, v)
		}
	}

	return &Matrix{X: X, IDs: ids, Columns: cols}, nil
}

// FeaturesTarget builds the feature matrix and target vector from a
// training table. The target column must be present; use WithOutcomes to
// join it on.
func FeaturesTarget(df dataframe.DataFrame) (*Matrix, *mat.VecDense, error) {
	if !hasColumn(df, ColTarget) {
		return nil, nil, errors.NewValidationError(ColTarget, "target column is required", df.Names())
	}
	m, err := Features(df)
	if err != nil {
		return nil, nil, err
	}

	s := df.Col(ColTarget)
	vals := s.Float()
	y := mat.NewVecDense(len(vals), nil)
	for i, v := range vals {
		if math.IsNaN(v) {
			return nil, nil, errors.NewMissingTargetError(m.IDs[i])
		}
		y.SetVec(i, v)
	}
	return m, y, nil
}

// Rows returns the number of rows in the matrix.
func (m *Matrix) Rows() int {
	r, _ := m.X.Dims()
	return r
}

// SameSchema verifies that other carries exactly the columns of m, in the
// same order. Anything else is schema drift and is reported, never papered
// over by positional alignment.
func (m *Matrix) SameSchema(other *Matrix) error {
	if len(m.Columns) != len(other.Columns) {
		return errors.NewSchemaError("SameSchema", m.Columns, other.Columns)
	}
	for i, c := range m.Columns {
		if other.Columns[i] != c {
			return errors.NewSchemaError("SameSchema", m.Columns, other.Columns)
		}
	}
	return nil
}

// Head returns a view of the first n rows.
func (m *Matrix) Head(n int) *Matrix {
	return &Matrix{
		X:       m.X.Slice(0, n, 0, len(m.Columns)).(*mat.Dense),
		IDs:     m.IDs[:n],
		Columns: m.Columns,
	}
}

// Tail returns a view of the last n rows.
func (m *Matrix) Tail(n int) *Matrix {
	r := m.Rows()
	return &Matrix{
		X:       m.X.Slice(r-n, r, 0, len(m.Columns)).(*mat.Dense),
		IDs:     m.IDs[r-n:],
		Columns: m.Columns,
	}
}
