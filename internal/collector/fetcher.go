package collector

import (
	"context"
	"time"

	"PriceLens/internal/model"
)

// Fetcher defines the interface for fetching daily price bars.
// Implementations return bars dated within [start, end), may return an empty
// slice when the symbol has no data in range, and wrap model.ErrSymbolNotFound
// or model.ErrNetwork on failure.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}
