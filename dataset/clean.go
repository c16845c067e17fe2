package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/quantpool/loanroi/pkg/errors"
)

// Clean runs the full preparation chain on a freshly loaded loan table:
// drop joint-applicant loans, convert percent strings to floats, normalize
// and sort by issue date, cut pre-2010 loans, keep only 36-month loans, fix
// the employment-length column, and drop columns that are unknown at issue
// time or otherwise unwanted for modeling.
func Clean(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	df = dropJointApplicants(df)

	df, err := ParsePercentColumns(df, ColInterestRate, "revol_util")
	if err != nil {
		return df, err
	}

	df, err = NormalizeIssueDates(df)
	if err != nil {
		return df, err
	}
	df = excludeLoansBefore(df, "2010-01-01")

	df, err = CleanTerm(df)
	if err != nil {
		return df, err
	}

	df, err = CleanEmploymentLength(df)
	if err != nil {
		return df, err
	}

	df = DropPostIssueColumns(df)
	if df.Err != nil {
		return df, errors.Wrap(df.Err, "clean loan table")
	}
	if df.Nrow() == 0 {
		return df, errors.ErrEmptyData
	}
	return df, nil
}

// subsetWhere keeps the rows of df for which keep returns true on the named
// column. Missing column means no filtering.
func subsetWhere(df dataframe.DataFrame, col string, keep func(series.Element) bool) dataframe.DataFrame {
	if !hasColumn(df, col) {
		return df
	}
	s := df.Col(col)
	idx := make([]int, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		if keep(s.Elem(i)) {
			idx = append(idx, i)
		}
	}
	return df.Subset(idx)
}

// dropJointApplicants keeps only loans issued to individuals. Joint
// applications are a newer product with too little history.
func dropJointApplicants(df dataframe.DataFrame) dataframe.DataFrame {
	return subsetWhere(df, "application_type", func(el series.Element) bool {
		return strings.EqualFold(strings.TrimSpace(el.String()), "individual")
	})
}

// ParsePercentColumns converts columns exported as percent strings, e.g.
// "16.37%", into plain floats. Columns not present are skipped; absent
// values stay absent.
func ParsePercentColumns(df dataframe.DataFrame, cols ...string) (dataframe.DataFrame, error) {
	for _, col := range cols {
		if !hasColumn(df, col) {
			continue
		}
		s := df.Col(col)
		if s.Type() == series.Float || s.Type() == series.Int {
			continue // already numeric
		}
		vals := make([]float64, s.Len())
		for i := 0; i < s.Len(); i++ {
			el := s.Elem(i)
			if el.IsNA() {
				vals[i] = math.NaN()
				continue
			}
			raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(el.String()), "%"))
			if raw == "" {
				vals[i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return df, errors.NewValidationError(col, "not a percent value", el.String())
			}
			vals[i] = v
		}
		df = df.Mutate(series.New(vals, series.Float, col))
		if df.Err != nil {
			return df, errors.Wrap(df.Err, "parse percent column")
		}
	}
	return df, nil
}

// issueDateLayouts are the formats the upstream export has used over the
// years, e.g. "Dec-2015", "Dec-15".
var issueDateLayouts = []string{"Jan-2006", "Jan-06", "06-Jan", IssueDateLayout}

func parseIssueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	// Short year-first dates lose their leading zero in the export.
	if len(raw) > 0 && raw[0] >= '0' && raw[0] <= '9' && len(raw) == 5 {
		raw = "0" + raw
	}
	for _, layout := range issueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewValidationError(ColIssueDate, "unrecognized date format", raw)
}

// NormalizeIssueDates drops rows without an issue date, rewrites the column
// to the IssueDateLayout form, and sorts the table by issue date. Sorting
// here fixes the iteration order every later stage inherits.
func NormalizeIssueDates(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !hasColumn(df, ColIssueDate) {
		return df, errors.NewValidationError(ColIssueDate, "column is required", df.Names())
	}

	df = subsetWhere(df, ColIssueDate, func(el series.Element) bool {
		return !el.IsNA() && strings.TrimSpace(el.String()) != ""
	})
	if df.Err != nil {
		return df, errors.Wrap(df.Err, "drop rows without issue date")
	}

	s := df.Col(ColIssueDate)
	dates := make([]string, s.Len())
	for i := 0; i < s.Len(); i++ {
		t, err := parseIssueDate(s.Elem(i).String())
		if err != nil {
			return df, err
		}
		dates[i] = t.Format(IssueDateLayout)
	}
	df = df.Mutate(series.New(dates, series.String, ColIssueDate))
	if df.Err != nil {
		return df, errors.Wrap(df.Err, "normalize issue dates")
	}

	df = df.Arrange(dataframe.Sort(ColIssueDate))
	if df.Err != nil {
		return df, errors.Wrap(df.Err, "sort by issue date")
	}
	return df, nil
}

// excludeLoansBefore drops loans issued before the cutoff. The default
// cutoff removes the recession-era cohort the models are not meant to learn
// from.
func excludeLoansBefore(df dataframe.DataFrame, cutoff string) dataframe.DataFrame {
	return subsetWhere(df, ColIssueDate, func(el series.Element) bool {
		return el.String() >= cutoff
	})
}

// CleanTerm converts the loan term column ("36 months" / "60 months") to an
// integer and keeps only the 36-month loans the simulator trades.
func CleanTerm(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	const col = "term"
	if !hasColumn(df, col) {
		return df, nil
	}

	s := df.Col(col)
	terms := make([]int, s.Len())
	for i := 0; i < s.Len(); i++ {
		raw := strings.TrimSpace(s.Elem(i).String())
		switch {
		case strings.HasPrefix(raw, "36"):
			terms[i] = 36
		case strings.HasPrefix(raw, "60"):
			terms[i] = 60
		default:
			return df, errors.NewValidationError(col, "unrecognized loan term", raw)
		}
	}
	df = df.Mutate(series.New(terms, series.Int, col))
	if df.Err != nil {
		return df, errors.Wrap(df.Err, "clean term column")
	}

	df = subsetWhere(df, col, func(el series.Element) bool {
		v, err := el.Int()
		return err == nil && v == 36
	})
	return df, nil
}

// CleanEmploymentLength converts the employment length column to a float:
// "< 1 year" becomes 0, "10+ years" becomes 10, absent stays absent.
func CleanEmploymentLength(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	const col = "emp_length"
	if !hasColumn(df, col) {
		return df, nil
	}

	s := df.Col(col)
	vals := make([]float64, s.Len())
	for i := 0; i < s.Len(); i++ {
		el := s.Elem(i)
		if el.IsNA() {
			vals[i] = math.NaN()
			continue
		}
		raw := strings.TrimSpace(el.String())
		if raw == "" {
			vals[i] = math.NaN()
			continue
		}
		if strings.HasPrefix(raw, "<") {
			vals[i] = 0
			continue
		}
		digits := leadingDigits(raw)
		if digits == "" {
			vals[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return df, errors.NewValidationError(col, "unrecognized employment length", raw)
		}
		vals[i] = v
	}
	df = df.Mutate(series.New(vals, series.Float, col))
	if df.Err != nil {
		return df, errors.Wrap(df.Err, "clean employment length")
	}
	return df, nil
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// postIssueColumns are dropped before modeling: either unknown at issue
// time or deliberately excluded, matching the upstream feature set.
var postIssueColumns = []string{
	"zip_code", "total_rec_prncp", "total_rec_int", "earliest_cr_line",
	"term", "last_pymnt_d", "total_pymnt_inv", "application_type",
	"loan_status",
}

// DropPostIssueColumns removes the columns in postIssueColumns that are
// present in df.
func DropPostIssueColumns(df dataframe.DataFrame) dataframe.DataFrame {
	drop := make([]string, 0, len(postIssueColumns))
	for _, col := range postIssueColumns {
		if hasColumn(df, col) {
			drop = append(drop, col)
		}
	}
	if len(drop) == 0 {
		return df
	}
	return df.Drop(drop)
}
