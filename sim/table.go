// Package sim builds the simulation tables the external portfolio
// simulator consumes, including the non-learned baseline strategies.
package sim

import (
	"github.com/go-gota/gota/dataframe"

	"github.com/quantpool/loanroi/dataset"
	"github.com/quantpool/loanroi/pkg/errors"
)

// Predictions is a prediction vector together with the loan ids it was
// produced for, in row order. Carrying the ids makes row alignment a
// checked contract instead of a silent positional assumption.
type Predictions struct {
	IDs    []int64
	Values []float64
}

// Row is one entry of a simulation table.
type Row struct {
	IssueDate    string
	LoanID       int64
	Amount       float64
	PredictedROI float64
}

// Table is the fixed three-column schema handed to the portfolio
// simulator, indexed by issue date. Rows keep the insertion order of the
// source table; the issue date is a grouping index, not a sort key.
type Table struct {
	Rows []Row
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Dates returns the distinct issue dates in first-appearance order.
func (t *Table) Dates() []string {
	seen := map[string]bool{}
	var dates []string
	for _, r := range t.Rows {
		if !seen[r.IssueDate] {
			seen[r.IssueDate] = true
			dates = append(dates, r.IssueDate)
		}
	}
	return dates
}

// ByDate groups rows by issue date, preserving insertion order within each
// date.
func (t *Table) ByDate() map[string][]Row {
	groups := make(map[string][]Row)
	for _, r := range t.Rows {
		groups[r.IssueDate] = append(groups[r.IssueDate], r)
	}
	return groups
}

// Build reassembles predictions with loan identifiers, amounts and issue
// dates into a simulation table. The testing table must still carry its
// id, issue date and loan amount columns, and preds must be aligned with
// it row for row; a length or id mismatch is an error.
func Build(test dataframe.DataFrame, preds Predictions) (*Table, error) {
	n := test.Nrow()
	if n == 0 {
		return nil, errors.ErrEmptyData
	}
	if len(preds.Values) != n {
		return nil, errors.NewDimensionError("sim.Build", n, len(preds.Values), 0)
	}
	if len(preds.IDs) != len(preds.Values) {
		return nil, errors.NewDimensionError("sim.Build", len(preds.Values), len(preds.IDs), 0)
	}

	ids, err := dataset.LoanIDs(test)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		if preds.IDs[i] != id {
			return nil, errors.NewValidationError("predictions",
				"prediction row does not match table row", preds.IDs[i])
		}
	}

	dates, err := stringColumn(test, dataset.ColIssueDate)
	if err != nil {
		return nil, err
	}
	amounts, err := floatColumn(test, dataset.ColLoanAmount)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, n)
	for i := 0; i < n; i++ {
		rows[i] = Row{
			IssueDate:    dates[i],
			LoanID:       ids[i],
			Amount:       amounts[i],
			PredictedROI: preds.Values[i],
		}
	}
	return &Table{Rows: rows}, nil
}

func stringColumn(df dataframe.DataFrame, name string) ([]string, error) {
	if !hasColumn(df, name) {
		return nil, errors.NewValidationError(name, "column is required", df.Names())
	}
	return df.Col(name).Records(), nil
}

func floatColumn(df dataframe.DataFrame, name string) ([]float64, error) {
	if !hasColumn(df, name) {
		return nil, errors.NewValidationError(name, "column is required", df.Names())
	}
	return df.Col(name).Float(), nil
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}
