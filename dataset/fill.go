package dataset

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/quantpool/loanroi/pkg/errors"
)

// FillMissing replaces every absent numeric value with the sentinel.
// Columns without absent values are left untouched, so present values and
// their types survive the pass unchanged. String columns are skipped; they
// must have been dummy-encoded already, and Features rejects any that slip
// through.
func FillMissing(df dataframe.DataFrame, sentinel float64) (dataframe.DataFrame, error) {
	if df.Nrow() == 0 {
		return df, errors.ErrEmptyData
	}

	names := df.Names()
	types := df.Types()
	for i, name := range names {
		if types[i] != series.Float && types[i] != series.Int {
			continue
		}
		s := df.Col(name)
		if !s.HasNaN() {
			continue
		}
		vals := s.Float()
		for j, v := range vals {
			if math.IsNaN(v) {
				vals[j] = sentinel
			}
		}
		df = df.Mutate(series.New(vals, series.Float, name))
		if df.Err != nil {
			return df, errors.Wrap(df.Err, "fill missing values")
		}
	}
	return df, nil
}

// HasMissing reports whether any numeric column of df still contains an
// absent value.
func HasMissing(df dataframe.DataFrame) bool {
	names := df.Names()
	types := df.Types()
	for i, name := range names {
		if types[i] != series.Float && types[i] != series.Int {
			continue
		}
		if df.Col(name).HasNaN() {
			return true
		}
	}
	return false
}
