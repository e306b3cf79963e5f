package collector

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"PriceLens/internal/model"
)

// Collector turns raw fetcher output into a clean PriceSeries.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// NormalizeSymbol trims and upper-cases a user-entered ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Collect fetches daily bars for symbol and returns them as a series with
// strictly increasing dates, one bar per date and positive closes.
// An empty series is not an error here; callers decide what it means.
func (c *Collector) Collect(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("collect: empty symbol: %w", model.ErrSymbolNotFound)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("collect: end %s is not after start %s", end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	raw, err := c.Fetcher.FetchDailyBars(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}

	bars, dropped := sanitize(raw, start, end)
	if dropped > 0 {
		log.Printf("[WARN] %s: dropped %d of %d bars (bad close, duplicate date or out of range)", symbol, dropped, len(raw))
	}

	return &model.PriceSeries{
		Symbol:    symbol,
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}

// sanitize sorts bars, keeps the last bar of each calendar date and drops
// non-positive closes and bars outside [start, end).
func sanitize(raw []model.OHLCV, start, end time.Time) ([]model.OHLCV, int) {
	sorted := make([]model.OHLCV, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := make([]model.OHLCV, 0, len(sorted))
	for _, b := range sorted {
		if b.Close <= 0 || b.Time.Before(start) || !b.Time.Before(end) {
			continue
		}
		if n := len(out); n > 0 && sameDate(out[n-1].Time, b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out, len(raw) - len(out)
}

func sameDate(a, b time.Time) bool {
	return a.UTC().Format(time.DateOnly) == b.UTC().Format(time.DateOnly)
}
