package pipeline

import (
	"fmt"

	"PriceLens/internal/calculator"
	"PriceLens/internal/model"
)

// Scaler is a fitted min-max transform: normalized = (price - Min) * Scale.
type Scaler struct {
	Min   float64
	Scale float64
}

// FitScaler fits a Scaler to values so that their range maps onto [0, 1].
// A constant sequence has no range and fails with model.ErrDegenerateScale.
func FitScaler(values []float64) (Scaler, error) {
	low, high, err := calculator.MinMax(values)
	if err != nil {
		return Scaler{}, fmt.Errorf("fit scaler: %w", model.ErrDataUnavailable)
	}
	if high == low {
		return Scaler{}, fmt.Errorf("fit scaler: all %d values equal %.4f: %w", len(values), low, model.ErrDegenerateScale)
	}
	return Scaler{Min: low, Scale: 1 / (high - low)}, nil
}

// TransformValue maps one price to the normalized scale.
func (s Scaler) TransformValue(v float64) float64 {
	return (v - s.Min) * s.Scale
}

// InverseValue maps one normalized value back to price units.
func (s Scaler) InverseValue(v float64) float64 {
	return v/s.Scale + s.Min
}

// Transform returns a normalized copy of values.
func (s Scaler) Transform(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.TransformValue(v)
	}
	return out
}

// Inverse returns values mapped back to price units.
func (s Scaler) Inverse(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.InverseValue(v)
	}
	return out
}
