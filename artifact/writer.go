// Package artifact persists simulation tables, one compressed CSV per
// model or strategy. The reader half exists for tests and ad-hoc
// inspection; the canonical consumer of these files is the external
// portfolio simulator.
package artifact

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/quantpool/loanroi/pkg/errors"
	"github.com/quantpool/loanroi/pkg/log"
	"github.com/quantpool/loanroi/sim"
)

// header is the fixed artifact schema: issue date index first, then the
// three payload columns.
var header = []string{"issue_d", "id", "loan_amnt", "predicted_roi"}

// Writer persists simulation tables under a directory.
type Writer struct {
	dir    string
	logger log.Logger
}

// NewWriter creates a Writer rooted at dir. The directory is created on
// first write.
func NewWriter(dir string, logger log.Logger) *Writer {
	if logger == nil {
		logger = log.Nop()
	}
	return &Writer{dir: dir, logger: logger}
}

// Filename returns the artifact name for a model or strategy.
func Filename(model string) string {
	return fmt.Sprintf("model_%s_predictions.csv.gz", model)
}

// Write persists the table for the named model and returns the artifact
// path. The write is all-or-nothing: the table is written to a temporary
// file and renamed into place, and a rerun simply overwrites the previous
// artifact. Writes for different models are independent; there is no
// cross-artifact transaction.
func (w *Writer) Write(model string, table *sim.Table) (string, error) {
	if table == nil || table.Len() == 0 {
		return "", errors.ErrEmptyData
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create artifact directory")
	}

	path := filepath.Join(w.dir, Filename(model))
	tmp, err := os.CreateTemp(w.dir, Filename(model)+".tmp-")
	if err != nil {
		return "", errors.Wrap(err, "create temporary artifact")
	}
	defer os.Remove(tmp.Name())

	if err := writeTable(tmp, table); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "close temporary artifact")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.Wrap(err, "publish artifact")
	}

	w.logger.Info("wrote simulation table",
		"model", model,
		"path", path,
		"rows", table.Len(),
	)
	return path, nil
}

func writeTable(f *os.File, table *sim.Table) error {
	zw := gzip.NewWriter(f)
	cw := csv.NewWriter(zw)

	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write artifact header")
	}
	for _, row := range table.Rows {
		rec := []string{
			row.IssueDate,
			strconv.FormatInt(row.LoanID, 10),
			strconv.FormatFloat(row.Amount, 'g', -1, 64),
			// float32 precision is all the simulator needs.
			strconv.FormatFloat(row.PredictedROI, 'g', -1, 32),
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "write artifact row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, "flush artifact")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "close gzip stream")
	}
	return nil
}

// Read loads a simulation table artifact back from disk.
func Read(path string) (*sim.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open artifact")
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "open gzip stream")
	}
	defer zr.Close()

	cr := csv.NewReader(zr)
	cr.FieldsPerRecord = len(header)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse artifact")
	}
	if len(records) == 0 || records[0][0] != header[0] {
		return nil, errors.NewValidationError("artifact", "missing header", path)
	}

	table := &sim.Table{Rows: make([]sim.Row, 0, len(records)-1)}
	for _, rec := range records[1:] {
		id, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return nil, errors.NewValidationError("artifact", "loan id is not an integer", rec[1])
		}
		amount, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, errors.NewValidationError("artifact", "loan amount is not numeric", rec[2])
		}
		roi, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, errors.NewValidationError("artifact", "predicted ROI is not numeric", rec[3])
		}
		table.Rows = append(table.Rows, sim.Row{
			IssueDate:    rec[0],
			LoanID:       id,
			Amount:       amount,
			PredictedROI: roi,
		})
	}
	return table, nil
}
