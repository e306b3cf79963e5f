package model

import "math"

// ChartSeries is one line of a chart. A nil value means no point at that date.
type ChartSeries struct {
	Label  string     `json:"label"`
	Color  string     `json:"color"`
	Values []*float64 `json:"values"`
}

// ChartSpec describes a line chart over a shared date axis.
type ChartSpec struct {
	Title  string        `json:"title"`
	Style  string        `json:"style"`
	XLabel string        `json:"x_label"`
	YLabel string        `json:"y_label"`
	Dates  []string      `json:"dates"`
	Series []ChartSeries `json:"series"`
}

// NewChartSeries converts values to chart points, mapping NaN and Inf to nil.
func NewChartSeries(label, color string, values []float64) ChartSeries {
	points := make([]*float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		v := v
		points[i] = &v
	}
	return ChartSeries{Label: label, Color: color, Values: points}
}
