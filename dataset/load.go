package dataset

import (
	"compress/gzip"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/quantpool/loanroi/pkg/errors"
)

// nanTokens are the strings the upstream export uses for absent values.
var nanTokens = []string{"", "n/a", "NA", "NaN"}

// openMaybeGzip opens path, transparently decompressing when the name ends
// in .gz.
func openMaybeGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open input")
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "open gzip input")
	}
	return &gzipReadCloser{zr: zr, f: f}, nil
}

type gzipReadCloser struct {
	zr *gzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipReadCloser) Close() error {
	zerr := g.zr.Close()
	ferr := g.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

// LoadLoans reads the loan table from a CSV file, gzip-compressed when the
// path ends in .gz. The table must carry an "id" column.
func LoadLoans(path string) (dataframe.DataFrame, error) {
	rc, err := openMaybeGzip(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer rc.Close()
	return ReadLoans(rc)
}

// ReadLoans parses a loan table from r. Split out from LoadLoans so tests
// can feed tables from memory.
func ReadLoans(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(nanTokens),
	)
	if df.Err != nil {
		return df, errors.Wrap(df.Err, "parse loan table")
	}
	if df.Nrow() == 0 {
		return df, errors.ErrEmptyData
	}
	if !hasColumn(df, ColID) {
		return df, errors.NewValidationError("loans", "table has no id column", df.Names())
	}
	return df, nil
}

// LoadOutcomes reads the loan id -> realized ROI map from a two-column CSV
// file (header "id,roi"), gzip-compressed when the path ends in .gz.
func LoadOutcomes(path string) (map[int64]float64, error) {
	rc, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadOutcomes(rc)
}

// ReadOutcomes parses the outcome map from r.
func ReadOutcomes(r io.Reader) (map[int64]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse outcome map")
	}
	if len(records) == 0 {
		return nil, errors.ErrEmptyData
	}

	outcomes := make(map[int64]float64, len(records))
	for i, rec := range records {
		if i == 0 && rec[0] == ColID {
			continue // header
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, errors.NewValidationError("outcomes", "loan id is not an integer", rec[0])
		}
		roi, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, errors.NewValidationError("outcomes", "realized ROI is not numeric", rec[1])
		}
		if _, dup := outcomes[id]; dup {
			return nil, errors.NewValidationError("outcomes", "duplicate loan id", id)
		}
		outcomes[id] = roi
	}
	return outcomes, nil
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}
