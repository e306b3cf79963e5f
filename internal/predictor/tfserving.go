package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PriceLens/internal/model"
)

// TFServingClient runs inference against a TensorFlow Serving REST endpoint
// hosting the exported Keras model.
type TFServingClient struct {
	Endpoint  string
	ModelName string
	Client    *http.Client
	length    int
}

// NewTFServingClient creates a client for endpoint (e.g. http://localhost:8501).
func NewTFServingClient(endpoint, modelName string, windowLength, timeoutSeconds int) *TFServingClient {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	return &TFServingClient{
		Endpoint:  strings.TrimRight(endpoint, "/"),
		ModelName: modelName,
		Client:    &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
		length:    windowLength,
	}
}

func (c *TFServingClient) Name() string     { return "tfserving:" + c.ModelName }
func (c *TFServingClient) InputLength() int { return c.length }

func (c *TFServingClient) modelURL() string {
	return fmt.Sprintf("%s/v1/models/%s", c.Endpoint, url.PathEscape(c.ModelName))
}

// Ping checks that the server has the model loaded.
func (c *TFServingClient) Ping(ctx context.Context) error {
	if c.Endpoint == "" || c.ModelName == "" {
		return fmt.Errorf("tfserving artifact needs endpoint and model_name: %w", model.ErrModelUnavailable)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelURL(), nil)
	if err != nil {
		return err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("tfserving status: %v: %w", err, model.ErrModelUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tfserving status: %d: %w", resp.StatusCode, model.ErrModelUnavailable)
	}
	return nil
}

type predictRequest struct {
	Instances [][][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions []json.RawMessage `json:"predictions"`
	Error       string            `json:"error"`
}

// Predict sends the whole batch in one request, each window shaped (length x 1).
func (c *TFServingClient) Predict(ctx context.Context, batch [][]float64) ([]float64, error) {
	if err := checkBatch(batch, c.length); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, nil
	}

	instances := make([][][]float64, len(batch))
	for i, w := range batch {
		steps := make([][]float64, len(w))
		for j, v := range w {
			steps[j] = []float64{v}
		}
		instances[i] = steps
	}
	body, err := json.Marshal(predictRequest{Instances: instances})
	if err != nil {
		return nil, fmt.Errorf("marshal instances: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL()+":predict", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tfserving predict: %v: %w", err, model.ErrModelUnavailable)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tfserving read body: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("tfserving predict: model %q not found: %w", c.ModelName, model.ErrModelUnavailable)
	case resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("tfserving predict: %s: %w", strings.TrimSpace(string(respBody)), model.ErrShapeMismatch)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("tfserving predict: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var out predictResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("tfserving decode: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("tfserving predict: %s", out.Error)
	}

	preds := make([]float64, len(out.Predictions))
	for i, raw := range out.Predictions {
		v, err := scalar(raw)
		if err != nil {
			return nil, fmt.Errorf("prediction %d: %w", i, err)
		}
		preds[i] = v
	}
	return preds, nil
}

// scalar accepts either a bare number or a one-element array, the two shapes a
// single-output regression head is served as.
func scalar(raw json.RawMessage) (float64, error) {
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, nil
	}
	var arr []float64
	if err := json.Unmarshal(raw, &arr); err != nil {
		return 0, fmt.Errorf("unexpected prediction %s: %w", string(raw), model.ErrShapeMismatch)
	}
	if len(arr) != 1 {
		return 0, fmt.Errorf("prediction has %d outputs, expected 1: %w", len(arr), model.ErrShapeMismatch)
	}
	return arr[0], nil
}
