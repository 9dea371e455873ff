package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPriceService(agg PriceRefresher, store SnapshotStore, now *time.Time) *PriceService {
	s := NewPriceService(agg, store, NewRefreshGate(10*time.Minute), zerolog.Nop())
	s.now = func() time.Time { return *now }
	return s
}

func freshSnapshot(at time.Time) *models.PriceSnapshot {
	return &models.PriceSnapshot{
		USDToLocal:    98500,
		EURToLocal:    106200,
		Gold18ToLocal: 7250000,
		FiatPrices:    models.PriceMap{"USD": 98500, "EUR": 106200},
		CryptoPrices:  models.PriceMap{"BTC": 6000000000},
		GoldPrices:    models.PriceMap{models.SymbolGold18: 7250000},
		FetchedAt:     at,
	}
}

func TestPriceService_CurrentDefaultsBeforeFirstRefresh(t *testing.T) {
	now := fixedNow
	s := newTestPriceService(&fakeRefresher{}, nil, &now)

	cur := s.Current()
	require.NotNil(t, cur)
	assert.Equal(t, DefaultUSDRate, cur.USDToLocal)
	assert.True(t, cur.IsDefault)
}

func TestPriceService_RefreshStoresAndPersists(t *testing.T) {
	now := fixedNow
	store := &memorySnapshotStore{}
	sources := []models.SourceReport{{Type: models.CategoryFiat, SourceLabel: SourcePrimary}}
	agg := &fakeRefresher{snapshot: freshSnapshot(now), sources: sources}
	s := newTestPriceService(agg, store, &now)

	res := s.Refresh(context.Background(), false)

	assert.True(t, res.Success)
	assert.False(t, res.Skipped)
	assert.Equal(t, sources, res.Sources)
	assert.Same(t, agg.snapshot, res.Data)
	assert.Same(t, agg.snapshot, s.Current())
	require.Len(t, store.saved, 1)
}

func TestPriceService_CooldownEchoesPrevious(t *testing.T) {
	now := fixedNow
	first := freshSnapshot(now)
	agg := &fakeRefresher{snapshot: first}
	s := newTestPriceService(agg, nil, &now)
	s.Refresh(context.Background(), false)

	now = fixedNow.Add(5 * time.Minute)
	agg.snapshot = freshSnapshot(now)
	res := s.Refresh(context.Background(), false)

	assert.True(t, res.Success)
	assert.True(t, res.Skipped)
	assert.Same(t, first, res.Data)
	require.NotNil(t, res.NextAllowedAt)
	assert.Equal(t, fixedNow.Add(10*time.Minute), *res.NextAllowedAt)
	assert.NotEmpty(t, res.Message)
	assert.Equal(t, 1, agg.Calls())

	forced := s.Refresh(context.Background(), true)
	assert.False(t, forced.Skipped)
	assert.Equal(t, 2, agg.Calls())
	assert.Same(t, agg.snapshot, s.Current())
}

func TestPriceService_PassesPreviousToAggregator(t *testing.T) {
	now := fixedNow
	agg := &fakeRefresher{snapshot: freshSnapshot(now)}
	s := newTestPriceService(agg, nil, &now)

	s.Refresh(context.Background(), true)
	s.Refresh(context.Background(), true)

	require.Len(t, agg.prevSeen, 2)
	assert.Nil(t, agg.prevSeen[0])
	assert.Same(t, agg.snapshot, agg.prevSeen[1])
}

func TestPriceService_FailureServesDefaultSnapshot(t *testing.T) {
	tests := []struct {
		name string
		agg  *fakeRefresher
	}{
		{"error", &fakeRefresher{err: ErrNoPrices}},
		{"panic", &fakeRefresher{panics: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := fixedNow
			store := &memorySnapshotStore{}
			s := newTestPriceService(tt.agg, store, &now)

			var res models.RefreshResult
			require.NotPanics(t, func() { res = s.Refresh(context.Background(), false) })

			require.NotNil(t, res.Data)
			assert.Equal(t, DefaultUSDRate, res.Data.USDToLocal)
			assert.Equal(t, DefaultGold18Rate, res.Data.Gold18ToLocal)
			assert.Equal(t, fixedNow, res.Data.FetchedAt)
			assert.NotEmpty(t, res.Message)
			assert.Empty(t, store.saved, "default prices are not persisted")
		})
	}
}

func TestPriceService_FailureKeepsLastFetchedSnapshot(t *testing.T) {
	now := fixedNow
	fetched := freshSnapshot(now)
	agg := &fakeRefresher{snapshot: fetched}
	store := &memorySnapshotStore{}
	s := newTestPriceService(agg, store, &now)

	require.False(t, s.Refresh(context.Background(), false).Skipped)

	now = fixedNow.Add(time.Hour)
	agg.panics = true
	res := s.Refresh(context.Background(), false)

	require.NotNil(t, res.Data)
	assert.True(t, res.Data.IsDefault)
	assert.Same(t, fetched, s.Current())
	assert.Equal(t, 98500.0, s.Current().USDToLocal)
	assert.Len(t, store.saved, 1)
}

func TestPriceService_FailedColdStartDoesNotStartCooldown(t *testing.T) {
	now := fixedNow
	agg := &fakeRefresher{err: ErrNoPrices}
	s := newTestPriceService(agg, nil, &now)

	res := s.Refresh(context.Background(), false)
	require.True(t, res.Data.IsDefault)
	assert.True(t, s.Current().IsDefault)

	now = fixedNow.Add(time.Minute)
	agg.err = nil
	agg.snapshot = freshSnapshot(now)
	res = s.Refresh(context.Background(), false)

	assert.False(t, res.Skipped)
	assert.Same(t, agg.snapshot, s.Current())
	assert.False(t, s.Current().IsDefault)
	require.Len(t, agg.prevSeen, 2)
	assert.Nil(t, agg.prevSeen[1], "default prices are never carried into a real snapshot")
}

func TestPriceService_Load(t *testing.T) {
	now := fixedNow
	stored := freshSnapshot(fixedNow.Add(-time.Minute))
	store := &memorySnapshotStore{saved: []*models.PriceSnapshot{stored}}
	agg := &fakeRefresher{snapshot: freshSnapshot(now)}
	s := newTestPriceService(agg, store, &now)

	require.NoError(t, s.Load(context.Background()))
	assert.Same(t, stored, s.Current())

	res := s.Refresh(context.Background(), false)
	assert.True(t, res.Skipped, "stored snapshot starts the cooldown")
}

func TestPriceService_LoadError(t *testing.T) {
	now := fixedNow
	s := newTestPriceService(&fakeRefresher{}, &memorySnapshotStore{err: errors.New("disk")}, &now)
	assert.Error(t, s.Load(context.Background()))
}

func TestPriceService_ConcurrentRefreshIsSingleFlight(t *testing.T) {
	now := fixedNow
	agg := &fakeRefresher{snapshot: freshSnapshot(now), delay: 20 * time.Millisecond}
	s := newTestPriceService(agg, nil, &now)

	var wg sync.WaitGroup
	results := make([]models.RefreshResult, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Refresh(context.Background(), false)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, agg.Calls())
	skipped := 0
	for _, r := range results {
		if r.Skipped {
			skipped++
		}
	}
	assert.Equal(t, 4, skipped)
}
