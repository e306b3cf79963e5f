package pipeline

import (
	"context"
	"fmt"
	"time"

	"PriceLens/internal/model"
)

// Predictor maps a batch of normalized windows to one normalized next-step value each,
// in the same order.
type Predictor interface {
	Predict(ctx context.Context, batch [][]float64) ([]float64, error)
}

// Prepared holds the model-ready tensors built from a price series.
type Prepared struct {
	Params     Params
	Scaler     Scaler
	TrainSize  int
	TestSize   int
	WarmupSize int
	// Offset is the series index of Input[0].
	Offset     int
	Input      []float64
	Normalized []float64
	Windows    [][]float64
	Targets    []float64
}

// TargetIndex returns the series index of the k-th target.
func (p *Prepared) TargetIndex(k int) int {
	return p.Offset + p.Params.WindowLength + k
}

// Prepare splits closes, builds the warm-up-prefixed evaluation input, fits the
// scaler on it and slices it into windows. Too little data for a single window
// fails with model.ErrDataUnavailable before any scaling is attempted.
func Prepare(closes []float64, params Params) (*Prepared, error) {
	params = params.withDefaults()
	L := params.WindowLength

	train, test := Split(closes, params.SplitFraction)
	input := EvaluationInput(train, test, L)
	warm := WarmupSize(len(train), L)

	p := &Prepared{
		Params:     params,
		TrainSize:  len(train),
		TestSize:   len(test),
		WarmupSize: warm,
		Offset:     len(train) - warm,
		Input:      input,
	}

	if WindowCount(len(input), L) == 0 {
		return p, fmt.Errorf("prepare: %d bars give %d evaluation values, need more than %d: %w",
			len(closes), len(input), L, model.ErrDataUnavailable)
	}

	scaler, err := FitScaler(input)
	if err != nil {
		return p, fmt.Errorf("prepare: %w", err)
	}
	p.Scaler = scaler
	p.Normalized = scaler.Transform(input)
	p.Windows, p.Targets = Windows(p.Normalized, L)
	return p, nil
}

// Forecast runs the whole pipeline for series: prepare, one batched prediction,
// inverse scaling of predictions and targets, and accuracy.
func Forecast(ctx context.Context, series *model.PriceSeries, predictor Predictor, params Params) (*model.Forecast, error) {
	if series.Len() == 0 {
		return nil, fmt.Errorf("forecast: empty series: %w", model.ErrDataUnavailable)
	}
	prep, err := Prepare(series.Closes(), params)
	if err != nil {
		return nil, err
	}

	raw, err := predictor.Predict(ctx, prep.Windows)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(raw) != len(prep.Windows) {
		return nil, fmt.Errorf("predict: got %d outputs for %d windows: %w",
			len(raw), len(prep.Windows), model.ErrShapeMismatch)
	}

	predicted := prep.Scaler.Inverse(raw)
	actual := prep.Scaler.Inverse(prep.Targets)

	dates := make([]time.Time, len(actual))
	for k := range dates {
		dates[k] = series.Bars[prep.TargetIndex(k)].Time
	}

	return &model.Forecast{
		Dates:       dates,
		Predicted:   predicted,
		Actual:      actual,
		ScalerMin:   prep.Scaler.Min,
		ScalerScale: prep.Scaler.Scale,
		TrainSize:   prep.TrainSize,
		TestSize:    prep.TestSize,
		WarmupSize:  prep.WarmupSize,
		Windows:     len(prep.Windows),
		Accuracy:    Evaluate(predicted, actual),
	}, nil
}
