package collector

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"PriceLens/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// It is safe for concurrent use; fields other than Calls must not change
// after the first fetch.
type MockFetcher struct {
	Price     float64
	DailyData []model.OHLCV
	Err       error
	Calls     atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, start, end time.Time) ([]model.OHLCV, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	price := m.Price
	if price <= 0 {
		price = 100
	}
	return generateMockBars(price, start, end), nil
}

// generateMockBars produces one bar per weekday in [start, end) following a
// gentle trend with a yearly cycle.
func generateMockBars(basePrice float64, start, end time.Time) []model.OHLCV {
	var bars []model.OHLCV
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; day.Before(end); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i)*0.0004 + 0.05*math.Sin(float64(i)/40))
		bars = append(bars, model.OHLCV{
			Time:   day,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		i++
	}
	return bars
}
