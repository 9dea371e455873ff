package services

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/providers"
)

type fakeFetcher struct {
	name   string
	prices models.PriceMap
	err    error
	panics bool
	block  bool
	calls  int32
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) Fetch(ctx context.Context) (models.PriceMap, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.panics {
		panic("boom")
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.prices.Clone(), nil
}

func (f *fakeFetcher) Calls() int { return int(atomic.LoadInt32(&f.calls)) }

// rateFetcher multiplies its USD-quoted prices by the injected rate.
type rateFetcher struct {
	name string
	usd  models.PriceMap
	rate float64
	seen *float64
}

func (f *rateFetcher) Name() string { return f.name }

func (f *rateFetcher) WithUSDRate(rate float64) providers.Fetcher {
	cp := *f
	cp.rate = rate
	return &cp
}

func (f *rateFetcher) Fetch(ctx context.Context) (models.PriceMap, error) {
	if f.seen != nil {
		*f.seen = f.rate
	}
	out := models.PriceMap{}
	for k, v := range f.usd {
		out.Set(k, v*f.rate)
	}
	return out, nil
}

type fakeMissing struct {
	prices  models.PriceMap
	present models.PriceMap
	rate    float64
}

func (f *fakeMissing) FillMissing(ctx context.Context, present models.PriceMap, assets []providers.CoinGeckoAsset, usdRate float64) models.PriceMap {
	f.present = present.Clone()
	f.rate = usdRate
	out := models.PriceMap{}
	for _, a := range assets {
		if _, ok := present.Get(a.Symbol); ok {
			continue
		}
		if v, ok := f.prices.Get(a.Symbol); ok {
			out.Set(a.Symbol, v*usdRate)
		}
	}
	return out
}

type fakeRefresher struct {
	mu       sync.Mutex
	snapshot *models.PriceSnapshot
	sources  []models.SourceReport
	err      error
	panics   bool
	delay    time.Duration
	calls    int
	prevSeen []*models.PriceSnapshot
}

func (f *fakeRefresher) Refresh(ctx context.Context, prev *models.PriceSnapshot) (*models.PriceSnapshot, []models.SourceReport, error) {
	f.mu.Lock()
	f.calls++
	f.prevSeen = append(f.prevSeen, prev)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.panics {
		panic("aggregator exploded")
	}
	return f.snapshot, f.sources, f.err
}

func (f *fakeRefresher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memorySnapshotStore struct {
	mu    sync.Mutex
	saved []*models.PriceSnapshot
	err   error
}

func (s *memorySnapshotStore) LoadLatestSnapshot(ctx context.Context) (*models.PriceSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if len(s.saved) == 0 {
		return nil, nil
	}
	return s.saved[len(s.saved)-1], nil
}

func (s *memorySnapshotStore) SaveSnapshot(ctx context.Context, snapshot *models.PriceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, snapshot)
	return nil
}

type errNotFound struct{}

func (errNotFound) Error() string { return "not found" }

type memoryLedger struct {
	mu  sync.Mutex
	txs map[string]models.Transaction
	seq []string
}

func newMemoryLedger(txs ...models.Transaction) *memoryLedger {
	l := &memoryLedger{txs: map[string]models.Transaction{}}
	for _, tx := range txs {
		_ = l.SaveTransaction(context.Background(), &tx)
	}
	return l
}

func (l *memoryLedger) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []models.Transaction{}
	for _, id := range l.seq {
		if tx, ok := l.txs[id]; ok && tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (l *memoryLedger) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tx, ok := l.txs[id]
	if !ok || tx.UserID != userID {
		return nil, errNotFound{}
	}
	return &tx, nil
}

func (l *memoryLedger) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.txs[tx.ID]; !ok {
		l.seq = append(l.seq, tx.ID)
	}
	l.txs[tx.ID] = *tx
	return nil
}

func (l *memoryLedger) DeleteTransaction(ctx context.Context, userID, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	tx, ok := l.txs[id]
	if !ok || tx.UserID != userID {
		return errNotFound{}
	}
	delete(l.txs, id)
	return nil
}

func (l *memoryLedger) ListUserIDs(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	set := map[string]bool{}
	for _, tx := range l.txs {
		set[tx.UserID] = true
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type fixedPrices struct{ snapshot *models.PriceSnapshot }

func (f fixedPrices) Current() *models.PriceSnapshot { return f.snapshot }
