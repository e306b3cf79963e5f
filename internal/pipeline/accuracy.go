package pipeline

import (
	"math"

	"PriceLens/internal/model"
)

// Evaluate compares predicted with actual prices position by position.
// MAPE ignores positions where the actual price is zero.
func Evaluate(predicted, actual []float64) model.Accuracy {
	n := len(predicted)
	if len(actual) < n {
		n = len(actual)
	}
	if n == 0 {
		return model.Accuracy{}
	}

	var absSum, sqSum, pctSum float64
	pctN := 0
	for i := 0; i < n; i++ {
		diff := predicted[i] - actual[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
		if actual[i] != 0 {
			pctSum += math.Abs(diff / actual[i])
			pctN++
		}
	}

	acc := model.Accuracy{
		MAE:  absSum / float64(n),
		RMSE: math.Sqrt(sqSum / float64(n)),
	}
	if pctN > 0 {
		acc.MAPE = pctSum / float64(pctN) * 100
	}
	return acc
}
