// Package dataset owns the tabular side of the pipeline: loading the raw
// loan table and the outcome map, cleaning the raw columns, dummy-encoding
// categoricals, filling missing values, and turning the prepared table into
// gonum matrices for the estimators.
//
// The loan table is held in a gota DataFrame throughout. Column names follow
// the upstream Lending Club export: "id", "issue_d", "loan_amnt", "int_rate"
// and so on. The realized return lives in the outcome map, not the table;
// it is joined in as the "roi" column for training rows only.
package dataset

// Well-known column names. These three never enter the feature matrix.
const (
	ColID        = "id"
	ColIssueDate = "issue_d"
	ColTarget    = "roi"

	// ColLoanAmount and ColInterestRate are carried through to the
	// simulation table and the baseline strategies respectively.
	ColLoanAmount   = "loan_amnt"
	ColInterestRate = "int_rate"
)

// MissingSentinel replaces absent numeric values. It sits far outside every
// legitimate column range so threshold-based models can use it as a split
// point.
const MissingSentinel = -99.0

// IssueDateLayout is the normalized issue date format after cleaning.
// Lexicographic order equals chronological order, which the sort and the
// pre-2010 cutoff both rely on.
const IssueDateLayout = "2006-01-02"
