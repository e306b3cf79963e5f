package predictor

import (
	"context"
	"fmt"

	"PriceLens/internal/model"
)

// LinearModel is an autoregressive model exported as one dense layer:
// y = Bias + sum(Weights[i] * window[i]).
type LinearModel struct {
	name    string
	weights []float64
	bias    float64
}

// NewLinearModel builds a LinearModel; the window length equals len(weights).
func NewLinearModel(name string, weights []float64, bias float64) *LinearModel {
	w := make([]float64, len(weights))
	copy(w, weights)
	return &LinearModel{name: name, weights: w, bias: bias}
}

func newLinearFromArtifact(art Artifact) (*LinearModel, error) {
	if len(art.Weights) != art.WindowLength {
		return nil, fmt.Errorf("linear model has %d weights for window_length %d: %w",
			len(art.Weights), art.WindowLength, model.ErrModelUnavailable)
	}
	name := art.Name
	if name == "" {
		name = KindLinear
	}
	return NewLinearModel(name, art.Weights, art.Bias), nil
}

func (m *LinearModel) Name() string     { return m.name }
func (m *LinearModel) InputLength() int { return len(m.weights) }

// Predict evaluates the model on every window of the batch.
func (m *LinearModel) Predict(ctx context.Context, batch [][]float64) ([]float64, error) {
	if err := checkBatch(batch, len(m.weights)); err != nil {
		return nil, err
	}
	out := make([]float64, len(batch))
	for i, w := range batch {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		y := m.bias
		for j, x := range w {
			y += m.weights[j] * x
		}
		out[i] = y
	}
	return out, nil
}
