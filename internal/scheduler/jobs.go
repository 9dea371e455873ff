package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/rs/zerolog"
)

const jobTimeout = 5 * time.Minute

// PriceRefresher is the snapshot holder's refresh entry point.
type PriceRefresher interface {
	Refresh(ctx context.Context, forced bool) models.RefreshResult
}

// PriceRefreshJob runs a non-forced refresh, so the cooldown still applies.
type PriceRefreshJob struct {
	prices PriceRefresher
	log    zerolog.Logger
}

func NewPriceRefreshJob(prices PriceRefresher, log zerolog.Logger) *PriceRefreshJob {
	return &PriceRefreshJob{
		prices: prices,
		log:    log.With().Str("job", "price_refresh").Logger(),
	}
}

func (j *PriceRefreshJob) Name() string { return "price_refresh" }

func (j *PriceRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	res := j.prices.Refresh(ctx, false)
	if res.Skipped {
		j.log.Debug().Msg("Skipped, cooldown active")
		return nil
	}
	for _, src := range res.Sources {
		j.log.Debug().
			Str("category", string(src.Type)).
			Str("source", src.SourceLabel).
			Int("count", src.Count).
			Msg("Category resolved")
	}
	return nil
}

// HistoryRecorder records every user's daily valuation.
type HistoryRecorder interface {
	RecordAll(ctx context.Context) error
}

type PortfolioHistoryJob struct {
	recorder HistoryRecorder
}

func NewPortfolioHistoryJob(recorder HistoryRecorder) *PortfolioHistoryJob {
	return &PortfolioHistoryJob{recorder: recorder}
}

func (j *PortfolioHistoryJob) Name() string { return "portfolio_history" }

func (j *PortfolioHistoryJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	return j.recorder.RecordAll(ctx)
}

// SnapshotPruner drops old price snapshots.
type SnapshotPruner interface {
	PruneSnapshots(ctx context.Context, keep int) (int64, error)
}

// SnapshotPruneJob keeps the snapshot table from growing without bound.
type SnapshotPruneJob struct {
	pruner SnapshotPruner
	keep   int
	log    zerolog.Logger
}

func NewSnapshotPruneJob(pruner SnapshotPruner, keep int, log zerolog.Logger) *SnapshotPruneJob {
	return &SnapshotPruneJob{
		pruner: pruner,
		keep:   keep,
		log:    log.With().Str("job", "snapshot_prune").Logger(),
	}
}

func (j *SnapshotPruneJob) Name() string { return "snapshot_prune" }

func (j *SnapshotPruneJob) Run() error {
	if j.keep <= 0 {
		return fmt.Errorf("snapshot_prune: keep must be positive, got %d", j.keep)
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	removed, err := j.pruner.PruneSnapshots(ctx, j.keep)
	if err != nil {
		return err
	}
	if removed > 0 {
		j.log.Info().Int64("removed", removed).Msg("Pruned old snapshots")
	}
	return nil
}
