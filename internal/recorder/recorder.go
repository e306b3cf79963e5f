package recorder

import (
	"context"

	"PriceLens/internal/model"
)

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(ctx context.Context, rec *model.RunRecord) error
	// RecentRuns returns the newest runs first. An empty symbol matches all symbols.
	RecentRuns(ctx context.Context, symbol string, limit int) ([]model.RunRecord, error)
	Close() error
}
