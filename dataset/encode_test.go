package dataset

import (
	"reflect"
	"testing"

	"github.com/go-gota/gota/dataframe"

	loanerrors "github.com/quantpool/loanroi/pkg/errors"
)

func loansTable(t *testing.T, records [][]string) dataframe.DataFrame {
	t.Helper()
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(true),
		dataframe.NaNValues([]string{"", "n/a", "NA", "NaN"}),
	)
	if df.Err != nil {
		t.Fatalf("failed to build table: %v", df.Err)
	}
	return df
}

func TestDummyEncoder_FitTransform(t *testing.T) {
	df := loansTable(t, [][]string{
		{"id", "home_ownership", "int_rate"},
		{"1", "RENT", "10.5"},
		{"2", "OWN", "7.2"},
		{"3", "RENT", "13.1"},
	})

	enc := NewDummyEncoder(ColID, ColIssueDate, ColTarget)
	out, err := enc.FitTransform(df)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	names := out.Names()
	for _, banned := range []string{"home_ownership"} {
		for _, n := range names {
			if n == banned {
				t.Errorf("categorical column %q should be dropped, got columns %v", banned, names)
			}
		}
	}

	own := out.Col("home_ownership=OWN").Float()
	rent := out.Col("home_ownership=RENT").Float()
	if !reflect.DeepEqual(own, []float64{0, 1, 0}) {
		t.Errorf("unexpected OWN indicator: %v", own)
	}
	if !reflect.DeepEqual(rent, []float64{1, 0, 1}) {
		t.Errorf("unexpected RENT indicator: %v", rent)
	}
}

func TestDummyEncoder_UnseenLevelIsZeroVector(t *testing.T) {
	train := loansTable(t, [][]string{
		{"id", "purpose"},
		{"1", "car"},
		{"2", "house"},
	})
	infer := loansTable(t, [][]string{
		{"id", "purpose"},
		{"3", "wedding"}, // never seen during Fit
	})

	enc := NewDummyEncoder(ColID)
	if err := enc.Fit(train); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	out, err := enc.Transform(infer)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	for _, col := range []string{"purpose=car", "purpose=house"} {
		vals := out.Col(col).Float()
		if vals[0] != 0 {
			t.Errorf("unseen level should produce zero indicator for %s, got %v", col, vals)
		}
	}
	for _, n := range out.Names() {
		if n == "purpose=wedding" {
			t.Error("unseen level must not create a new column")
		}
	}
}

func TestDummyEncoder_IdempotentOnEncodedTable(t *testing.T) {
	df := loansTable(t, [][]string{
		{"id", "purpose=car", "int_rate"},
		{"1", "1", "10.5"},
		{"2", "0", "7.2"},
	})

	enc := NewDummyEncoder(ColID)
	out, err := enc.FitTransform(df)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	if !reflect.DeepEqual(out.Names(), df.Names()) {
		t.Errorf("columns changed on already-encoded table: %v vs %v", out.Names(), df.Names())
	}
	if !reflect.DeepEqual(out.Records(), df.Records()) {
		t.Error("records changed on already-encoded table")
	}
}

func TestDummyEncoder_DeterministicNaming(t *testing.T) {
	df := loansTable(t, [][]string{
		{"id", "grade"},
		{"1", "B"},
		{"2", "A"},
		{"3", "C"},
	})

	enc := NewDummyEncoder(ColID)
	out, err := enc.FitTransform(df)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	// Levels are sorted, so the column order never depends on row order.
	want := []string{"grade=A", "grade=B", "grade=C"}
	names := out.Names()
	got := names[len(names)-3:]
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected indicator columns: %v", got)
	}
}

func TestDummyEncoder_TransformBeforeFit(t *testing.T) {
	df := loansTable(t, [][]string{
		{"id", "grade"},
		{"1", "A"},
	})

	enc := NewDummyEncoder(ColID)
	_, err := enc.Transform(df)
	if err == nil {
		t.Fatal("expected NotFittedError")
	}
	var nf *loanerrors.NotFittedError
	if !loanerrors.As(err, &nf) {
		t.Errorf("expected NotFittedError, got %T: %v", err, err)
	}
}
