package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMax(t *testing.T) {
	low, high, err := MinMax([]float64{5, 3, 9, 1, 7})
	require.NoError(t, err)
	assert.Equal(t, 1.0, low)
	assert.Equal(t, 9.0, high)

	low, high, err = MinMax([]float64{42})
	require.NoError(t, err)
	assert.Equal(t, 42.0, low)
	assert.Equal(t, 42.0, high)

	_, _, err = MinMax(nil)
	assert.Error(t, err)
}

func TestPositionInRange(t *testing.T) {
	tests := []struct {
		v, low, high float64
		want         float64
	}{
		{150, 100, 200, 0.5},
		{100, 100, 200, 0},
		{200, 100, 200, 1},
		{50, 100, 200, 0},
		{250, 100, 200, 1},
		{120, 120, 120, 0.5},
	}
	for _, tt := range tests {
		got, err := PositionInRange(tt.v, tt.low, tt.high)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12)
	}

	_, err := PositionInRange(1, 5, 2)
	assert.Error(t, err)
}
