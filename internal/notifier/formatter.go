package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"PriceLens/internal/calculator"
	"PriceLens/internal/model"
)

// FormatDashboard formats a dashboard run into a Telegram HTML message.
func FormatDashboard(d *model.Dashboard, windows []int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s → %s\n\n", html.EscapeString(d.Symbol),
		d.Start.Format(time.DateOnly), d.End.Format(time.DateOnly)))

	if len(d.Bars) == 0 {
		b.WriteString("No price data.\n")
		return b.String()
	}

	closes := make([]float64, len(d.Bars))
	for i, bar := range d.Bars {
		closes[i] = bar.Close
	}
	last := d.Bars[len(d.Bars)-1]
	b.WriteString(fmt.Sprintf("Last close: %.2f (%s)\n", last.Close, last.Time.Format(time.DateOnly)))
	b.WriteString(fmt.Sprintf("Bars: %d\n", len(d.Bars)))

	if low, high, err := calculator.MinMax(closes); err == nil {
		b.WriteString(fmt.Sprintf("Range: %.2f – %.2f", low, high))
		if pos, err := calculator.PositionInRange(last.Close, low, high); err == nil {
			b.WriteString(fmt.Sprintf(" (at %.0f%%)", pos*100))
		}
		b.WriteString("\n")
	}
	if rsi, err := calculator.RSI(closes, calculator.DefaultRSIPeriod); err == nil {
		b.WriteString(fmt.Sprintf("RSI(%d): %.0f\n", calculator.DefaultRSIPeriod, rsi))
	}

	b.WriteString("\n📈 <b>Moving averages</b>\n")
	for _, w := range windows {
		ma, ok := calculator.LastValid(calculator.MovingAverage(closes, w))
		if !ok {
			b.WriteString(fmt.Sprintf("  MA%d: n/a (needs %d bars)\n", w, w))
			continue
		}
		b.WriteString(fmt.Sprintf("  MA%d: %.2f (%+.1f%%)\n", w, ma, (last.Close-ma)/ma*100))
	}

	b.WriteString("\n🤖 <b>Model</b>\n")
	switch {
	case d.Forecast != nil && d.Forecast.Forecast != nil:
		fc := d.Forecast.Forecast
		n := len(fc.Predicted)
		b.WriteString(fmt.Sprintf("  Evaluated %d days (train %d, test %d)\n", fc.Windows, fc.TrainSize, fc.TestSize))
		if n > 0 {
			b.WriteString(fmt.Sprintf("  %s: predicted %.2f, actual %.2f\n",
				fc.Dates[n-1].Format(time.DateOnly), fc.Predicted[n-1], fc.Actual[n-1]))
		}
		b.WriteString(fmt.Sprintf("  MAE %.2f | RMSE %.2f | MAPE %.2f%%\n", fc.Accuracy.MAE, fc.Accuracy.RMSE, fc.Accuracy.MAPE))
	case d.ForecastError != "":
		b.WriteString(fmt.Sprintf("  ⚠️ %s (%s)\n", html.EscapeString(d.ForecastError), d.ForecastKind))
	default:
		b.WriteString("  not run\n")
	}

	return b.String()
}

// FormatError formats a failed run.
func FormatError(symbol string, err error) string {
	return fmt.Sprintf("❌ <b>%s</b>: %s (%s)", html.EscapeString(symbol), html.EscapeString(err.Error()), model.ErrorKind(err))
}

// FormatRuns formats recent run records.
func FormatRuns(runs []model.RunRecord) string {
	if len(runs) == 0 {
		return "No runs recorded."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent runs</b>\n")
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("  %s %s %s %dms", r.StartedAt.Format("2006-01-02 15:04"), html.EscapeString(r.Symbol), r.Status, r.DurationMs))
		if r.Status == "ok" {
			b.WriteString(fmt.Sprintf(" MAPE %.2f%%", r.MAPE))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	var b strings.Builder
	b.WriteString("<b>PriceLens commands</b>\n")
	b.WriteString("/forecast SYMBOL - dashboard summary for SYMBOL\n")
	b.WriteString("SYMBOL - same as /forecast SYMBOL\n")
	b.WriteString("/runs - recent runs\n")
	b.WriteString("/help - this message\n")
	return b.String()
}

var tagReplacer = strings.NewReplacer("<b>", "", "</b>", "")

// PlainText strips the HTML markup used by the formatters, for terminal output.
func PlainText(s string) string {
	return html.UnescapeString(tagReplacer.Replace(s))
}
