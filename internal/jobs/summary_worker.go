package jobs

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultSummaryBatch is how many stale cards one run refreshes.
const DefaultSummaryBatch = 20

// SummaryRefresher rewrites the summaries of cards whose conversation
// moved on.
type SummaryRefresher interface {
	RefreshStale(ctx context.Context, limit int) (int, error)
}

// SummaryWorker keeps conversation summaries current for the sales team.
type SummaryWorker struct {
	refresher SummaryRefresher
	batch     int
}

func NewSummaryWorker(refresher SummaryRefresher, batch int) *SummaryWorker {
	if batch <= 0 {
		batch = DefaultSummaryBatch
	}
	return &SummaryWorker{refresher: refresher, batch: batch}
}

// ProcessJobs implements the JobProcessor interface
func (w *SummaryWorker) ProcessJobs(ctx context.Context) error {
	n, err := w.refresher.RefreshStale(ctx, w.batch)
	if err != nil {
		return fmt.Errorf("failed to refresh summaries: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "summaries refreshed", slog.Int("count", n))
	}
	return nil
}
