// Package predictor provides the pre-trained next-close models the dashboard runs.
//
// A model is described by an artifact file on disk and loaded once at start-up.
// The returned Predictor is immutable and safe for concurrent use, so a single
// handle is shared by every run.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"PriceLens/internal/model"
)

// Predictor maps each normalized window to a normalized next-step close.
type Predictor interface {
	Predict(ctx context.Context, batch [][]float64) ([]float64, error)
	// InputLength is the window length the model was trained on.
	InputLength() int
	Name() string
}

// Artifact kinds.
const (
	KindLinear    = "linear"
	KindTFServing = "tfserving"
)

// Artifact is the on-disk model descriptor.
type Artifact struct {
	Kind         string `yaml:"kind"`
	Name         string `yaml:"name"`
	WindowLength int    `yaml:"window_length"`
	Features     int    `yaml:"features"`

	// linear
	Weights []float64 `yaml:"weights"`
	Bias    float64   `yaml:"bias"`

	// tfserving
	Endpoint       string `yaml:"endpoint"`
	ModelName      string `yaml:"model_name"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Load reads the artifact at path and returns a ready Predictor.
// A missing, unreadable or incompatible artifact fails with model.ErrModelUnavailable.
func Load(ctx context.Context, path string) (Predictor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("model artifact %s not found: %w", path, model.ErrModelUnavailable)
		}
		return nil, fmt.Errorf("read model artifact: %v: %w", err, model.ErrModelUnavailable)
	}

	var art Artifact
	if err := yaml.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parse model artifact: %v: %w", err, model.ErrModelUnavailable)
	}
	if art.Features == 0 {
		art.Features = 1
	}
	if art.Features != 1 {
		return nil, fmt.Errorf("model expects %d features per step, closing price only provides 1: %w",
			art.Features, model.ErrModelUnavailable)
	}
	if art.WindowLength <= 0 {
		return nil, fmt.Errorf("model artifact has no window_length: %w", model.ErrModelUnavailable)
	}

	switch art.Kind {
	case KindLinear:
		m, err := newLinearFromArtifact(art)
		if err != nil {
			return nil, err
		}
		return m, nil
	case KindTFServing:
		client := NewTFServingClient(art.Endpoint, art.ModelName, art.WindowLength, art.TimeoutSeconds)
		if err := client.Ping(ctx); err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown model kind %q: %w", art.Kind, model.ErrModelUnavailable)
	}
}

// checkBatch verifies every window holds exactly length values.
func checkBatch(batch [][]float64, length int) error {
	for i, w := range batch {
		if len(w) != length {
			return fmt.Errorf("window %d has %d values, model expects %d: %w",
				i, len(w), length, model.ErrShapeMismatch)
		}
	}
	return nil
}
