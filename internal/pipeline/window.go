package pipeline

import "math"

const (
	// DefaultSplitFraction is the share of the series treated as the training segment.
	DefaultSplitFraction = 0.8
	// DefaultWindowLength is the number of past closes fed to the model per prediction.
	DefaultWindowLength = 100
)

// Params configures one pipeline run.
type Params struct {
	SplitFraction float64
	WindowLength  int
}

// DefaultParams returns the split and window length the bundled model was trained with.
func DefaultParams() Params {
	return Params{SplitFraction: DefaultSplitFraction, WindowLength: DefaultWindowLength}
}

func (p Params) withDefaults() Params {
	if p.SplitFraction <= 0 || p.SplitFraction >= 1 {
		p.SplitFraction = DefaultSplitFraction
	}
	if p.WindowLength <= 0 {
		p.WindowLength = DefaultWindowLength
	}
	return p
}

// SplitIndex returns floor(n*fraction), the first index of the evaluation segment.
func SplitIndex(n int, fraction float64) int {
	idx := int(math.Floor(float64(n) * fraction))
	if idx < 0 {
		return 0
	}
	if idx > n {
		return n
	}
	return idx
}

// Split divides prices into the training segment and the raw evaluation segment.
func Split(prices []float64, fraction float64) (train, test []float64) {
	idx := SplitIndex(len(prices), fraction)
	return prices[:idx], prices[idx:]
}

// WarmupSize returns how many trailing training observations precede the evaluation segment.
func WarmupSize(trainLen, windowLength int) int {
	if trainLen < windowLength {
		return trainLen
	}
	return windowLength
}

// EvaluationInput concatenates the last windowLength observations of train
// (all of them if train is shorter) with test, keeping chronological order.
func EvaluationInput(train, test []float64, windowLength int) []float64 {
	warm := WarmupSize(len(train), windowLength)
	out := make([]float64, 0, warm+len(test))
	out = append(out, train[len(train)-warm:]...)
	out = append(out, test...)
	return out
}

// WindowCount returns max(0, n-windowLength).
func WindowCount(n, windowLength int) int {
	if n <= windowLength {
		return 0
	}
	return n - windowLength
}

// Windows slices normalized into overlapping inputs of windowLength values,
// each paired with the value that follows it.
func Windows(normalized []float64, windowLength int) (windows [][]float64, targets []float64) {
	count := WindowCount(len(normalized), windowLength)
	if count == 0 || windowLength <= 0 {
		return nil, nil
	}
	windows = make([][]float64, 0, count)
	targets = make([]float64, 0, count)
	for i := windowLength; i < len(normalized); i++ {
		w := make([]float64, windowLength)
		copy(w, normalized[i-windowLength:i])
		windows = append(windows, w)
		targets = append(targets, normalized[i])
	}
	return windows, targets
}
