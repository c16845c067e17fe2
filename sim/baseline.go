package sim

import (
	"math/rand"

	"github.com/go-gota/gota/dataframe"

	"github.com/quantpool/loanroi/dataset"
	"github.com/quantpool/loanroi/pkg/errors"
)

// Baseline strategies bypass the estimators entirely and feed a
// deterministic or seeded-random prediction vector into the same table
// builder the learned models use, so every artifact shares one schema.

// HighInterest predicts each loan's interest rate as its ROI, so the
// simulator ranks loans from highest to lowest rate.
func HighInterest(test dataframe.DataFrame) (Predictions, error) {
	ids, err := dataset.LoanIDs(test)
	if err != nil {
		return Predictions{}, err
	}
	rates, err := floatColumn(test, dataset.ColInterestRate)
	if err != nil {
		return Predictions{}, err
	}
	return Predictions{IDs: ids, Values: rates}, nil
}

// LowInterest predicts the negated interest rate, ranking loans from
// lowest to highest rate.
func LowInterest(test dataframe.DataFrame) (Predictions, error) {
	preds, err := HighInterest(test)
	if err != nil {
		return Predictions{}, err
	}
	for i, v := range preds.Values {
		preds.Values[i] = -v
	}
	return preds, nil
}

// RandomUniform draws one prediction per loan uniformly from [low, high).
// The generator is passed in explicitly; seed it for a reproducible run.
// No global state is touched.
func RandomUniform(test dataframe.DataFrame, rng *rand.Rand, low, high float64) (Predictions, error) {
	if high <= low {
		return Predictions{}, errors.NewValidationError("random baseline", "high must exceed low", [2]float64{low, high})
	}
	ids, err := dataset.LoanIDs(test)
	if err != nil {
		return Predictions{}, err
	}
	values := make([]float64, len(ids))
	for i := range values {
		values[i] = low + rng.Float64()*(high-low)
	}
	return Predictions{IDs: ids, Values: values}, nil
}
