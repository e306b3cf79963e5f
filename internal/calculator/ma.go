package calculator

import (
	"math"

	"github.com/markcheno/go-talib"
)

// Default moving-average windows shown on the dashboard, in trading days.
var DefaultWindows = []int{50, 100, 200}

// MovingAverage computes the trailing simple moving average of prices over period.
// The result has the same length as prices; positions with fewer than period
// observations ending there hold NaN.
func MovingAverage(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	if period <= 0 || len(prices) < period {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	sma := talib.Sma(prices, period)
	copy(out, sma)
	// talib leaves the lookback region at zero
	for i := 0; i < period-1; i++ {
		out[i] = math.NaN()
	}
	return out
}

// MovingAverages computes MovingAverage for each period, keyed by period.
func MovingAverages(prices []float64, periods ...int) map[int][]float64 {
	out := make(map[int][]float64, len(periods))
	for _, p := range periods {
		out[p] = MovingAverage(prices, p)
	}
	return out
}

// LastValid returns the most recent non-NaN value, or false if there is none.
func LastValid(values []float64) (float64, bool) {
	for i := len(values) - 1; i >= 0; i-- {
		if !math.IsNaN(values[i]) {
			return values[i], true
		}
	}
	return 0, false
}
