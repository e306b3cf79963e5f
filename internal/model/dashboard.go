package model

import "time"

// ForecastView is the prediction section of a dashboard.
type ForecastView struct {
	Chart    ChartSpec `json:"chart"`
	Forecast *Forecast `json:"forecast"`
}

// Dashboard is everything the presentation layer renders for one symbol.
type Dashboard struct {
	RunID         string        `json:"run_id"`
	Symbol        string        `json:"symbol"`
	Start         time.Time     `json:"start"`
	End           time.Time     `json:"end"`
	GeneratedAt   time.Time     `json:"generated_at"`
	Bars          []OHLCV       `json:"bars"`
	Charts        []ChartSpec   `json:"charts"`
	Forecast      *ForecastView `json:"forecast,omitempty"`
	ForecastError string        `json:"forecast_error,omitempty"`
	ForecastKind  string        `json:"forecast_error_kind,omitempty"`
}

// RunRecord is the stored summary of one dashboard run. Prediction values are not kept.
type RunRecord struct {
	RunID       string    `json:"run_id"`
	Symbol      string    `json:"symbol"`
	StartedAt   time.Time `json:"started_at"`
	DurationMs  int64     `json:"duration_ms"`
	Bars        int       `json:"bars"`
	Windows     int       `json:"windows"`
	Status      string    `json:"status"`
	Message     string    `json:"message,omitempty"`
	ScalerMin   float64   `json:"scaler_min"`
	ScalerScale float64   `json:"scaler_scale"`
	MAE         float64   `json:"mae"`
	RMSE        float64   `json:"rmse"`
	MAPE        float64   `json:"mape"`
}
