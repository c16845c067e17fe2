package dataset

import (
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/quantpool/loanroi/pkg/errors"
)

// DummyEncoder replaces every categorical (string-typed) column with one
// 0/1 indicator column per level seen during Fit. Indicator columns are
// named "<column>=<level>", which is deterministic and collision-free as
// long as source column names do not contain '='.
//
// A level that shows up at Transform time but not at Fit time maps to an
// all-zero indicator row: the matrix shape stays fixed and the loan reads
// as "none of the known levels".
type DummyEncoder struct {
	exclude map[string]bool

	// fitted state
	cols   []string            // categorical columns, in table order
	levels map[string][]string // sorted levels per column
	fitted bool
}

// NewDummyEncoder creates an encoder. Columns named in exclude are never
// encoded, whatever their type; the id, issue date and target columns
// belong there.
func NewDummyEncoder(exclude ...string) *DummyEncoder {
	ex := make(map[string]bool, len(exclude))
	for _, c := range exclude {
		ex[c] = true
	}
	return &DummyEncoder{exclude: ex}
}

// Fit records the categorical columns of df and their observed levels.
func (e *DummyEncoder) Fit(df dataframe.DataFrame) error {
	if df.Nrow() == 0 {
		return errors.ErrEmptyData
	}

	e.cols = nil
	e.levels = make(map[string][]string)

	names := df.Names()
	types := df.Types()
	for i, name := range names {
		if e.exclude[name] || types[i] != series.String {
			continue
		}
		s := df.Col(name)
		seen := map[string]bool{}
		for j := 0; j < s.Len(); j++ {
			el := s.Elem(j)
			if el.IsNA() {
				continue
			}
			seen[el.String()] = true
		}
		levels := make([]string, 0, len(seen))
		for v := range seen {
			levels = append(levels, v)
		}
		sort.Strings(levels)

		e.cols = append(e.cols, name)
		e.levels[name] = levels
	}

	e.fitted = true
	return nil
}

// Transform replaces the fitted categorical columns with their indicator
// columns. The input is not modified. Transforming a table that has no
// categorical columns left is a no-op.
func (e *DummyEncoder) Transform(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !e.fitted {
		return df, errors.NewNotFittedError("DummyEncoder", "Transform")
	}

	for _, col := range e.cols {
		if !hasColumn(df, col) {
			return df, errors.NewValidationError(col, "fitted categorical column missing from table", df.Names())
		}
	}

	out := df
	if len(e.cols) > 0 {
		out = df.Drop(e.cols)
		if out.Err != nil {
			return out, errors.Wrap(out.Err, "drop categorical columns")
		}
	}

	for _, col := range e.cols {
		s := df.Col(col)
		for _, level := range e.levels[col] {
			indicator := make([]int, s.Len())
			for i := 0; i < s.Len(); i++ {
				el := s.Elem(i)
				if !el.IsNA() && el.String() == level {
					indicator[i] = 1
				}
			}
			out = out.Mutate(series.New(indicator, series.Int, col+"="+level))
			if out.Err != nil {
				return out, errors.Wrap(out.Err, "add indicator column")
			}
		}
	}
	return out, nil
}

// FitTransform fits the encoder on df and transforms it in one call.
func (e *DummyEncoder) FitTransform(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if err := e.Fit(df); err != nil {
		return df, err
	}
	return e.Transform(df)
}

// Columns returns the categorical columns recorded at Fit time.
func (e *DummyEncoder) Columns() []string {
	out := make([]string, len(e.cols))
	copy(out, e.cols)
	return out
}
