package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/rs/zerolog"
)

// SnapshotStore persists price snapshots. LoadLatestSnapshot returns nil, nil
// when nothing has been stored yet.
type SnapshotStore interface {
	LoadLatestSnapshot(ctx context.Context) (*models.PriceSnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *models.PriceSnapshot) error
}

// PriceRefresher produces a new snapshot from the previous one.
type PriceRefresher interface {
	Refresh(ctx context.Context, prev *models.PriceSnapshot) (*models.PriceSnapshot, []models.SourceReport, error)
}

// PriceService holds the current snapshot and owns the refresh cycle.
type PriceService struct {
	mu      sync.RWMutex
	current *models.PriceSnapshot

	// held for the whole check-then-fetch-then-write cycle
	refreshMu sync.Mutex

	gate       RefreshGate
	aggregator PriceRefresher
	store      SnapshotStore
	now        func() time.Time
	log        zerolog.Logger
}

func NewPriceService(aggregator PriceRefresher, store SnapshotStore, gate RefreshGate, log zerolog.Logger) *PriceService {
	return &PriceService{
		gate:       gate,
		aggregator: aggregator,
		store:      store,
		now:        time.Now,
		log:        log.With().Str("component", "prices").Logger(),
	}
}

// Load seeds the holder with the latest stored snapshot.
func (s *PriceService) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	snapshot, err := s.store.LoadLatestSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load latest snapshot: %w", err)
	}
	if snapshot != nil {
		s.set(snapshot)
		s.log.Info().Time("fetched_at", snapshot.FetchedAt).Msg("Loaded stored snapshot")
	}
	return nil
}

// Current returns the snapshot valuation should use. Before any snapshot has
// been fetched it returns the default one, flagged IsDefault.
func (s *PriceService) Current() *models.PriceSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return DefaultSnapshot(time.Time{})
	}
	return s.current
}

func (s *PriceService) latest() *models.PriceSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *PriceService) set(snapshot *models.PriceSnapshot) {
	s.mu.Lock()
	s.current = snapshot
	s.mu.Unlock()
}

// Refresh runs one refresh cycle. Only privileged callers may pass forced.
// Concurrent calls are serialized, so the second of two simultaneous
// non-forced requests is answered by the cooldown.
func (s *PriceService) Refresh(ctx context.Context, forced bool) models.RefreshResult {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	prev := s.latest()
	now := s.now()

	decision := s.gate.ShouldRefresh(prev, now, forced)
	if !decision.Allowed {
		s.log.Debug().Time("next_allowed_at", decision.NextAllowedAt).Msg("Refresh skipped by cooldown")
		next := decision.NextAllowedAt
		return models.RefreshResult{
			Success:       true,
			Data:          prev,
			Sources:       []models.SourceReport{},
			Skipped:       true,
			NextAllowedAt: &next,
			Message:       decision.Message,
		}
	}

	base := prev
	if base != nil && base.IsDefault {
		base = nil
	}

	snapshot, sources, err := s.runAggregator(ctx, base)
	if err != nil {
		s.log.Error().Err(err).Msg("Refresh failed, serving default prices")
		fallback := DefaultSnapshot(now)
		// the last fetched snapshot stays current for valuation
		if base == nil {
			s.set(fallback)
		}
		if sources == nil {
			sources = []models.SourceReport{}
		}
		return models.RefreshResult{
			Success: true,
			Data:    fallback,
			Sources: sources,
			Message: "Price sources are unavailable, default prices are shown",
		}
	}

	s.set(snapshot)
	if s.store != nil {
		if err := s.store.SaveSnapshot(ctx, snapshot); err != nil {
			s.log.Error().Err(err).Msg("Failed to persist snapshot")
		}
	}

	return models.RefreshResult{
		Success: true,
		Data:    snapshot,
		Sources: sources,
	}
}

func (s *PriceService) runAggregator(ctx context.Context, prev *models.PriceSnapshot) (snapshot *models.PriceSnapshot, sources []models.SourceReport, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			snapshot, sources = nil, nil
			err = fmt.Errorf("panic during refresh: %v", rec)
		}
	}()
	return s.aggregator.Refresh(ctx, prev)
}
