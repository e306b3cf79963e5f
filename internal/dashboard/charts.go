package dashboard

import (
	"fmt"
	"time"

	"PriceLens/internal/calculator"
	"PriceLens/internal/model"
)

// Chart presentation constants.
const (
	ChartStyle  = "dark_background"
	ChartXLabel = "Time"
	ChartYLabel = "Price"
)

type maLine struct {
	window int // index into the configured MA windows
	color  string
}

type maLayout struct {
	title      string
	lines      []maLine
	closeColor string
}

// maLayouts are the three overlay charts: the first window alone, the first
// two windows, then the second and third.
var maLayouts = []maLayout{
	{
		title:      "Original price vs moving average of %d days",
		lines:      []maLine{{0, "yellow"}},
		closeColor: "purple",
	},
	{
		title:      "Original price vs MA %d days vs MA %d days",
		lines:      []maLine{{0, "blue"}, {1, "red"}},
		closeColor: "green",
	},
	{
		title:      "Original price vs MA %d days vs MA %d days",
		lines:      []maLine{{1, "red"}, {2, "yellow"}},
		closeColor: "pink",
	},
}

// MovingAverageCharts builds the overlay charts for series. A layout that
// needs more windows than configured is skipped.
func MovingAverageCharts(series *model.PriceSeries, windows []int) []model.ChartSpec {
	closes := series.Closes()
	dates := formatDates(series.Dates())
	averages := calculator.MovingAverages(closes, windows...)

	charts := make([]model.ChartSpec, 0, len(maLayouts))
	for _, layout := range maLayouts {
		if !fits(layout, windows) {
			continue
		}
		args := make([]any, 0, len(layout.lines))
		spec := newChart("", dates)
		for _, line := range layout.lines {
			w := windows[line.window]
			args = append(args, w)
			spec.Series = append(spec.Series, model.NewChartSeries(fmt.Sprintf("MA%d", w), line.color, averages[w]))
		}
		spec.Series = append(spec.Series, model.NewChartSeries("Close", layout.closeColor, closes))
		spec.Title = fmt.Sprintf(layout.title, args...)
		charts = append(charts, spec)
	}
	return charts
}

// ForecastChart plots predicted against actual closes on the evaluation dates.
func ForecastChart(fc *model.Forecast) model.ChartSpec {
	spec := newChart("Original closing price vs predicted closing price", formatDates(fc.Dates))
	spec.Series = []model.ChartSeries{
		model.NewChartSeries("predicted price", "red", fc.Predicted),
		model.NewChartSeries("original price", "yellow", fc.Actual),
	}
	return spec
}

func newChart(title string, dates []string) model.ChartSpec {
	return model.ChartSpec{
		Title:  title,
		Style:  ChartStyle,
		XLabel: ChartXLabel,
		YLabel: ChartYLabel,
		Dates:  dates,
	}
}

func fits(layout maLayout, windows []int) bool {
	for _, line := range layout.lines {
		if line.window >= len(windows) {
			return false
		}
	}
	return true
}

func formatDates(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.UTC().Format(time.DateOnly)
	}
	return out
}
