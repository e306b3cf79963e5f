package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceLens/internal/model"
)

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{"only gains", ramp(30), 100},
		{"flat", []float64{5, 5, 5, 5, 5}, 50},
		{"equal gains and losses", []float64{10, 11, 10, 11, 10}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RSI(tt.closes, 4)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRSI_Falling(t *testing.T) {
	closes := []float64{20, 19, 18, 17, 16, 15, 14}
	got, err := RSI(closes, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got, 1e-9)
}

func TestRSI_Errors(t *testing.T) {
	_, err := RSI(ramp(14), DefaultRSIPeriod)
	assert.ErrorIs(t, err, model.ErrDataUnavailable)

	_, err = RSI(ramp(10), 0)
	assert.Error(t, err)
}
