package model

import "time"

// Accuracy summarizes prediction error in price units.
type Accuracy struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"` // percent
}

// Forecast is the denormalized output of one pipeline run.
// Predicted[k] and Actual[k] both refer to Dates[k].
type Forecast struct {
	Dates       []time.Time `json:"dates"`
	Predicted   []float64   `json:"predicted"`
	Actual      []float64   `json:"actual"`
	ScalerMin   float64     `json:"scaler_min"`
	ScalerScale float64     `json:"scaler_scale"`
	TrainSize   int         `json:"train_size"`
	TestSize    int         `json:"test_size"`
	WarmupSize  int         `json:"warmup_size"`
	Windows     int         `json:"windows"`
	Accuracy    Accuracy    `json:"accuracy"`
}
