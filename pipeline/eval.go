package pipeline

import (
	"github.com/YuminosukeSato/scigo/metrics"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/quantpool/loanroi/dataset"
	"github.com/quantpool/loanroi/pkg/errors"
)

// Metrics summarizes holdout performance of one model.
type Metrics struct {
	MAE  float64
	RMSE float64
	R2   float64
}

// Evaluate scores a fitted model on a holdout slice of the training data.
// The holdout rows never reach the final fit, so these numbers are the
// closest thing to out-of-sample quality available before the simulator
// runs.
func Evaluate(m *Model, holdout *dataset.Matrix, y *mat.VecDense) (Metrics, []float64, error) {
	preds, err := m.Predict(holdout)
	if err != nil {
		return Metrics{}, nil, err
	}

	yPred := mat.NewVecDense(len(preds.Values), preds.Values)
	mae, err := metrics.MAE(y, yPred)
	if err != nil {
		return Metrics{}, nil, errors.Wrap(err, "compute MAE")
	}
	rmse, err := metrics.RMSE(y, yPred)
	if err != nil {
		return Metrics{}, nil, errors.Wrap(err, "compute RMSE")
	}
	r2, err := metrics.R2Score(y, yPred)
	if err != nil {
		return Metrics{}, nil, errors.Wrap(err, "compute R2")
	}
	return Metrics{MAE: mae, RMSE: rmse, R2: r2}, preds.Values, nil
}

// SaveScatter writes a realized-vs-predicted ROI scatter plot for a
// holdout evaluation.
func SaveScatter(path, model string, yTrue, yPred []float64) error {
	if len(yTrue) != len(yPred) {
		return errors.NewDimensionError("SaveScatter", len(yTrue), len(yPred), 0)
	}

	p := plot.New()
	p.Title.Text = model + " holdout"
	p.X.Label.Text = "realized ROI"
	p.Y.Label.Text = "predicted ROI"

	pts := make(plotter.XYs, len(yTrue))
	for i := range yTrue {
		pts[i].X = yTrue[i]
		pts[i].Y = yPred[i]
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "build scatter")
	}
	scatter.GlyphStyle.Radius = vg.Points(1.5)

	p.Add(plotter.NewGrid(), scatter)
	if err := p.Save(5*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrap(err, "save plot")
	}
	return nil
}
