package predictor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceLens/internal/model"
)

func writeArtifact(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Linear(t *testing.T) {
	path := writeArtifact(t, `
kind: linear
name: close-ar3
window_length: 3
weights: [0.2, 0.3, 0.5]
bias: 0.01
`)
	p, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "close-ar3", p.Name())
	assert.Equal(t, 3, p.InputLength())

	out, err := p.Predict(context.Background(), [][]float64{{1, 1, 1}, {0, 0, 1}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.01, 0.51}, out, 1e-12)
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"weights do not match window", "kind: linear\nwindow_length: 4\nweights: [1, 2]\n"},
		{"multi-feature model", "kind: linear\nwindow_length: 2\nfeatures: 5\nweights: [1, 2]\n"},
		{"no window length", "kind: linear\nweights: [1, 2]\n"},
		{"unknown kind", "kind: onnx\nwindow_length: 2\n"},
		{"not yaml", "kind: [linear\n"},
		{"tfserving without endpoint", "kind: tfserving\nwindow_length: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), writeArtifact(t, tt.body))
			assert.ErrorIs(t, err, model.ErrModelUnavailable)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrModelUnavailable)
	assert.True(t, strings.Contains(err.Error(), "not found"))
}

func TestLinearModel_ShapeMismatch(t *testing.T) {
	m := NewLinearModel("m", []float64{1, 1, 1}, 0)
	_, err := m.Predict(context.Background(), [][]float64{{1, 2, 3}, {1, 2}})
	assert.ErrorIs(t, err, model.ErrShapeMismatch)
}

func TestLinearModel_PreservesOrder(t *testing.T) {
	m := NewLinearModel("last", []float64{0, 0, 1}, 0)
	batch := [][]float64{{0, 0, 0.3}, {0, 0, 0.1}, {0, 0, 0.9}, {0, 0, 0.5}}
	out, err := m.Predict(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3, 0.1, 0.9, 0.5}, out)
}

func TestLinearModel_WeightsAreCopied(t *testing.T) {
	w := []float64{1, 2}
	m := NewLinearModel("m", w, 0)
	w[0] = 100
	out, err := m.Predict(context.Background(), [][]float64{{1, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, out)
}

func TestLoad_BundledArtifact(t *testing.T) {
	p, err := Load(context.Background(), filepath.Join("..", "..", "models", "stock_model.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 100, p.InputLength())

	// a flat window maps to itself plus the bias
	window := make([]float64, 100)
	for i := range window {
		window[i] = 0.5
	}
	out, err := p.Predict(context.Background(), [][]float64{window})
	require.NoError(t, err)
	assert.InDelta(t, 0.502, out[0], 1e-9)
}
