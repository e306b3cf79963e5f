// Package dashboard assembles everything the presentation layer shows for a
// symbol: the raw bars, the moving-average overlays and the model forecast.
package dashboard

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"PriceLens/internal/calculator"
	"PriceLens/internal/collector"
	"PriceLens/internal/metrics"
	"PriceLens/internal/model"
	"PriceLens/internal/pipeline"
	"PriceLens/internal/predictor"
	"PriceLens/internal/recorder"
)

// Source produces a clean price series for a symbol and date range.
type Source interface {
	Collect(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error)
}

// Builder runs the dashboard pipeline. It is safe for concurrent use; every
// Build is an independent run sharing only the read-only predictor.
type Builder struct {
	Source     Source
	SourceName string
	Predictor  predictor.Predictor
	Params     pipeline.Params
	Windows    []int
	Recorder   recorder.Recorder
	Metrics    *metrics.Metrics
}

// NewBuilder creates a Builder. A nil recorder records nothing and empty
// windows mean 50, 100 and 200 days.
func NewBuilder(src Source, sourceName string, pred predictor.Predictor, params pipeline.Params, windows []int, rec recorder.Recorder, m *metrics.Metrics) *Builder {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if len(windows) == 0 {
		windows = calculator.DefaultWindows
	}
	return &Builder{
		Source:     src,
		SourceName: sourceName,
		Predictor:  pred,
		Params:     params,
		Windows:    windows,
		Recorder:   rec,
		Metrics:    m,
	}
}

// Series fetches the bars of symbol. An empty series fails with
// model.ErrDataUnavailable.
func (b *Builder) Series(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	began := time.Now()
	series, err := b.Source.Collect(ctx, symbol, start, end)
	b.Metrics.ObserveFetch(b.SourceName, time.Since(began))
	if err != nil {
		return nil, err
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("%s: no bars between %s and %s: %w", series.Symbol,
			start.Format(time.DateOnly), end.Format(time.DateOnly), model.ErrDataUnavailable)
	}
	return series, nil
}

// Build runs one dashboard for symbol over [start, end).
//
// A fetch failure fails the run. A forecast failure does not: the returned
// dashboard still carries the bars and overlay charts, with ForecastError and
// ForecastKind describing what went wrong.
func (b *Builder) Build(ctx context.Context, symbol string, start, end time.Time) (*model.Dashboard, error) {
	began := time.Now()
	symbol = collector.NormalizeSymbol(symbol)
	d := &model.Dashboard{
		RunID:  uuid.NewString(),
		Symbol: symbol,
		Start:  start,
		End:    end,
	}
	rec := &model.RunRecord{RunID: d.RunID, Symbol: symbol, StartedAt: began.UTC()}

	series, err := b.Series(ctx, symbol, start, end)
	if err != nil {
		b.finish(ctx, rec, began, err)
		return nil, err
	}
	d.Symbol = series.Symbol
	d.Bars = series.Bars
	rec.Bars = series.Len()

	var (
		fc    *model.Forecast
		fcErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.Charts = MovingAverageCharts(series, b.Windows)
		return nil
	})
	g.Go(func() error {
		fc, fcErr = b.forecast(gctx, series)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		b.finish(ctx, rec, began, err)
		return nil, err
	}

	if fcErr != nil {
		log.Printf("[WARN] %s run %s: forecast skipped: %v", d.Symbol, d.RunID, fcErr)
		d.ForecastError = fcErr.Error()
		d.ForecastKind = model.ErrorKind(fcErr)
	} else {
		d.Forecast = &model.ForecastView{Chart: ForecastChart(fc), Forecast: fc}
		rec.Windows = fc.Windows
		rec.ScalerMin = fc.ScalerMin
		rec.ScalerScale = fc.ScalerScale
		rec.MAE = fc.Accuracy.MAE
		rec.RMSE = fc.Accuracy.RMSE
		rec.MAPE = fc.Accuracy.MAPE
		b.Metrics.SetMAPE(d.Symbol, fc.Accuracy.MAPE)
	}

	d.GeneratedAt = time.Now().UTC()
	b.finish(ctx, rec, began, fcErr)
	return d, nil
}

func (b *Builder) forecast(ctx context.Context, series *model.PriceSeries) (*model.Forecast, error) {
	if b.Predictor == nil {
		return nil, fmt.Errorf("no model loaded: %w", model.ErrModelUnavailable)
	}
	began := time.Now()
	fc, err := pipeline.Forecast(ctx, series, b.Predictor, b.Params)
	if err != nil {
		return nil, err
	}
	b.Metrics.ObserveInference(fc.Windows, time.Since(began))
	return fc, nil
}

// finish stores the run summary and metrics. Recording failures are logged only.
func (b *Builder) finish(ctx context.Context, rec *model.RunRecord, began time.Time, err error) {
	elapsed := time.Since(began)
	rec.DurationMs = elapsed.Milliseconds()
	rec.Status = model.ErrorKind(err)
	if err != nil {
		rec.Message = err.Error()
	}
	b.Metrics.ObserveRun(rec.Status, elapsed)

	if err := b.Recorder.RecordRun(context.WithoutCancel(ctx), rec); err != nil {
		log.Printf("[ERROR] record run %s: %v", rec.RunID, err)
	}
	log.Printf("[INFO] %s run %s finished in %s: %s", rec.Symbol, rec.RunID, elapsed.Round(time.Millisecond), rec.Status)
}
