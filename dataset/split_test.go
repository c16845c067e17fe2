package dataset

import (
	"reflect"
	"testing"

	loanerrors "github.com/quantpool/loanroi/pkg/errors"
)

func TestPartition_DisjointAndExhaustive(t *testing.T) {
	df := loansTable(t, [][]string{
		{"id", "int_rate"},
		{"1", "10.0"},
		{"2", "11.0"},
		{"3", "12.0"},
	})
	outcomes := map[int64]float64{1: 5.0, 2: -3.0}

	train, test, err := Partition(df, outcomes)
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}

	trainIDs, err := LoanIDs(train)
	if err != nil {
		t.Fatalf("LoanIDs(train) failed: %v", err)
	}
	testIDs, err := LoanIDs(test)
	if err != nil {
		t.Fatalf("LoanIDs(test) failed: %v", err)
	}

	if !reflect.DeepEqual(trainIDs, []int64{1, 2}) {
		t.Errorf("unexpected training ids: %v", trainIDs)
	}
	if !reflect.DeepEqual(testIDs, []int64{3}) {
		t.Errorf("unexpected testing ids: %v", testIDs)
	}
	if train.Nrow()+test.Nrow() != df.Nrow() {
		t.Errorf("partition is not exhaustive: %d + %d != %d", train.Nrow(), test.Nrow(), df.Nrow())
	}

	// Disjoint: no id appears on both sides.
	seen := map[int64]bool{}
	for _, id := range trainIDs {
		seen[id] = true
	}
	for _, id := range testIDs {
		if seen[id] {
			t.Errorf("loan %d appears in both subsets", id)
		}
	}
}

func TestWithOutcomes_JoinsTarget(t *testing.T) {
	df := loansTable(t, [][]string{
		{"id", "int_rate"},
		{"1", "10.0"},
		{"2", "11.0"},
	})

	out, err := WithOutcomes(df, map[int64]float64{1: 5.0, 2: -3.0})
	if err != nil {
		t.Fatalf("WithOutcomes failed: %v", err)
	}

	rois := out.Col(ColTarget).Float()
	if !reflect.DeepEqual(rois, []float64{5.0, -3.0}) {
		t.Errorf("unexpected target column: %v", rois)
	}
}

func TestWithOutcomes_MissingTarget(t *testing.T) {
	df := loansTable(t, [][]string{
		{"id", "int_rate"},
		{"7", "10.0"},
	})

	_, err := WithOutcomes(df, map[int64]float64{})
	if err == nil {
		t.Fatal("expected MissingTargetError")
	}
	var mt *loanerrors.MissingTargetError
	if !loanerrors.As(err, &mt) {
		t.Fatalf("expected MissingTargetError, got %T: %v", err, err)
	}
	if mt.LoanID != 7 {
		t.Errorf("unexpected loan id: %d", mt.LoanID)
	}
}

func TestFeatures_ExcludesNonFeatureColumns(t *testing.T) {
	df := loansTable(t, [][]string{
		{"id", "issue_d", "int_rate", "loan_amnt"},
		{"1", "2017-08-01", "10.0", "5000"},
		{"2", "2017-09-01", "11.0", "6000"},
	})

	m, err := Features(df)
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}

	if !reflect.DeepEqual(m.Columns, []string{"int_rate", "loan_amnt"}) {
		t.Errorf("unexpected feature columns: %v", m.Columns)
	}
	if !reflect.DeepEqual(m.IDs, []int64{1, 2}) {
		t.Errorf("unexpected ids: %v", m.IDs)
	}
	if got := m.X.At(1, 0); got != 11.0 {
		t.Errorf("unexpected matrix value: %v", got)
	}
}

func TestFeatures_RejectsCategoricalColumn(t *testing.T) {
	df := loansTable(t, [][]string{
		{"id", "purpose"},
		{"1", "car"},
	})

	if _, err := Features(df); err == nil {
		t.Fatal("expected error for unencoded categorical column")
	}
}

func TestFeatures_RejectsAbsentValues(t *testing.T) {
	df := loansTable(t, [][]string{
		{"id", "int_rate"},
		{"1", "NaN"},
	})

	if _, err := Features(df); err == nil {
		t.Fatal("expected error for absent value surviving the filler")
	}
}

func TestFeaturesTarget_RequiresTargetColumn(t *testing.T) {
	df := loansTable(t, [][]string{
		{"id", "int_rate"},
		{"1", "10.0"},
	})

	if _, _, err := FeaturesTarget(df); err == nil {
		t.Fatal("expected error when target column is absent")
	}
}

func TestFeaturesTarget_AlignedByRow(t *testing.T) {
	df := loansTable(t, [][]string{
		{"id", "int_rate", "roi"},
		{"1", "10.0", "4.2"},
		{"2", "11.0", "-1.3"},
	})

	m, y, err := FeaturesTarget(df)
	if err != nil {
		t.Fatalf("FeaturesTarget failed: %v", err)
	}
	if m.Rows() != 2 || y.Len() != 2 {
		t.Fatalf("unexpected shapes: %d rows, %d targets", m.Rows(), y.Len())
	}
	if y.AtVec(0) != 4.2 || y.AtVec(1) != -1.3 {
		t.Errorf("target misaligned: %v, %v", y.AtVec(0), y.AtVec(1))
	}
	for _, c := range m.Columns {
		if c == ColTarget {
			t.Error("target column leaked into the feature matrix")
		}
	}
}

func TestSameSchema(t *testing.T) {
	df := loansTable(t, [][]string{
		{"id", "int_rate", "loan_amnt"},
		{"1", "10.0", "5000"},
	})
	other := loansTable(t, [][]string{
		{"id", "loan_amnt", "int_rate"},
		{"2", "6000", "11.0"},
	})

	m1, err := Features(df)
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}
	m2, err := Features(other)
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}

	if err := m1.SameSchema(m1); err != nil {
		t.Errorf("identical schema reported as drift: %v", err)
	}

	err = m1.SameSchema(m2)
	if err == nil {
		t.Fatal("column order drift not detected")
	}
	var se *loanerrors.SchemaError
	if !loanerrors.As(err, &se) {
		t.Errorf("expected SchemaError, got %T: %v", err, err)
	}
}

func TestMatrixHeadTail(t *testing.T) {
	df := loansTable(t, [][]string{
		{"id", "int_rate"},
		{"1", "10.0"},
		{"2", "11.0"},
		{"3", "12.0"},
	})

	m, err := Features(df)
	if err != nil {
		t.Fatalf("Features failed: %v", err)
	}

	head := m.Head(2)
	tail := m.Tail(1)
	if head.Rows() != 2 || tail.Rows() != 1 {
		t.Fatalf("unexpected split sizes: %d, %d", head.Rows(), tail.Rows())
	}
	if tail.IDs[0] != 3 || tail.X.At(0, 0) != 12.0 {
		t.Errorf("tail misaligned: id=%d value=%v", tail.IDs[0], tail.X.At(0, 0))
	}
}
