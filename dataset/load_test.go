package dataset

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadLoans(t *testing.T) {
	csv := "id,issue_d,int_rate\n1,2017-08-01,10.5\n2,2017-08-01,n/a\n"

	df, err := ReadLoans(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadLoans failed: %v", err)
	}
	if df.Nrow() != 2 {
		t.Errorf("expected 2 rows, got %d", df.Nrow())
	}
	if !df.Col("int_rate").HasNaN() {
		t.Error("n/a should be read as an absent value")
	}
}

func TestReadLoans_RequiresIDColumn(t *testing.T) {
	csv := "loan,int_rate\n1,10.5\n"
	if _, err := ReadLoans(strings.NewReader(csv)); err == nil {
		t.Fatal("expected error for table without id column")
	}
}

func TestLoadLoans_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte("id,int_rate\n1,10.5\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "loans.csv.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	df, err := LoadLoans(path)
	if err != nil {
		t.Fatalf("LoadLoans failed: %v", err)
	}
	if df.Nrow() != 1 {
		t.Errorf("expected 1 row, got %d", df.Nrow())
	}
}

func TestReadOutcomes(t *testing.T) {
	csv := "id,roi\n114844590,-6.091\n113880484,2.736\n"

	outcomes, err := ReadOutcomes(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadOutcomes failed: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if outcomes[114844590] != -6.091 {
		t.Errorf("unexpected ROI: %v", outcomes[114844590])
	}
}

func TestReadOutcomes_RejectsDuplicateIDs(t *testing.T) {
	csv := "id,roi\n1,2.0\n1,3.0\n"
	if _, err := ReadOutcomes(strings.NewReader(csv)); err == nil {
		t.Fatal("expected error for duplicate loan id")
	}
}

func TestReadOutcomes_RejectsBadValues(t *testing.T) {
	csv := "id,roi\nabc,2.0\n"
	if _, err := ReadOutcomes(strings.NewReader(csv)); err == nil {
		t.Fatal("expected error for non-integer loan id")
	}
}
