package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/providers"
	"github.com/rs/zerolog"
)

// ErrNoPrices is returned when every category came back empty and there is no
// previous snapshot to keep.
var ErrNoPrices = errors.New("no prices available from any source")

// Fallback rates used when neither a provider nor a previous snapshot has one.
const (
	DefaultUSDRate    = 100000.0
	DefaultEURRate    = 110000.0
	DefaultGold18Rate = 7000000.0
)

// MissingAssetLookup fills assets that the crypto sources left out.
type MissingAssetLookup interface {
	FillMissing(ctx context.Context, present models.PriceMap, assets []providers.CoinGeckoAsset, usdRate float64) models.PriceMap
}

// Sources wires the fetchers for every category. Backups are tried in order.
// Fetchers implementing providers.RateAware receive the resolved USD rate.
type Sources struct {
	FiatPrimary providers.Fetcher
	FiatBackups []providers.Fetcher

	CryptoPrimary providers.Fetcher
	CryptoBackups []providers.Fetcher
	Missing       MissingAssetLookup
	MissingAssets []providers.CoinGeckoAsset

	GoldPrimary providers.Fetcher
	GoldBackups []providers.Fetcher
}

// Aggregator builds a new snapshot from all sources.
type Aggregator struct {
	sources  Sources
	resolver *Resolver
	now      func() time.Time
	log      zerolog.Logger
}

func NewAggregator(sources Sources, resolver *Resolver, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		sources:  sources,
		resolver: resolver,
		now:      time.Now,
		log:      log.With().Str("component", "aggregator").Logger(),
	}
}

// Refresh resolves fiat first, then crypto and gold concurrently with the USD
// rate from fiat. A category that resolves empty keeps prev's prices.
func (a *Aggregator) Refresh(ctx context.Context, prev *models.PriceSnapshot) (*models.PriceSnapshot, []models.SourceReport, error) {
	fiat := a.resolver.Resolve(ctx, models.CategoryFiat, a.sources.FiatPrimary, a.sources.FiatBackups...)
	usdRate := resolveUSDRate(fiat.Data, prev)

	var (
		wg     sync.WaitGroup
		crypto Resolution
		gold   Resolution
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		crypto = a.resolveCrypto(ctx, usdRate)
	}()
	go func() {
		defer wg.Done()
		gold = a.resolveGold(ctx, usdRate)
	}()
	wg.Wait()

	reports := []models.SourceReport{
		report(models.CategoryFiat, fiat),
		report(models.CategoryCrypto, crypto),
		report(models.CategoryGold, gold),
	}

	if prev == nil && len(fiat.Data) == 0 && len(crypto.Data) == 0 && len(gold.Data) == 0 {
		return nil, reports, ErrNoPrices
	}

	var prevFiat, prevCrypto, prevGold models.PriceMap
	if prev != nil {
		prevFiat, prevCrypto, prevGold = prev.FiatPrices, prev.CryptoPrices, prev.GoldPrices
	}
	fiatPrices := a.keepPrevious(models.CategoryFiat, fiat.Data, prevFiat)
	cryptoPrices := a.keepPrevious(models.CategoryCrypto, crypto.Data, prevCrypto)
	goldPrices := a.keepPrevious(models.CategoryGold, gold.Data, prevGold)

	if _, ok := fiatPrices.Get(models.SymbolUSD); !ok {
		fiatPrices.Set(models.SymbolUSD, usdRate)
	}
	if _, ok := fiatPrices.Get(models.SymbolEUR); !ok {
		fiatPrices.Set(models.SymbolEUR, previousRate(prev, func(s *models.PriceSnapshot) float64 { return s.EURToLocal }, DefaultEURRate))
	}

	gold18 := aliasGold18(goldPrices)
	if gold18 <= 0 {
		gold18 = previousRate(prev, func(s *models.PriceSnapshot) float64 { return s.Gold18ToLocal }, DefaultGold18Rate)
		goldPrices.Set(models.SymbolGold18, gold18)
	}

	snapshot := &models.PriceSnapshot{
		USDToLocal:    fiatPrices[models.SymbolUSD],
		EURToLocal:    fiatPrices[models.SymbolEUR],
		Gold18ToLocal: gold18,
		FiatPrices:    fiatPrices,
		CryptoPrices:  cryptoPrices,
		GoldPrices:    goldPrices,
		FetchedAt:     a.now(),
	}

	a.log.Info().
		Str("fiat", fiat.SourceLabel).
		Str("crypto", crypto.SourceLabel).
		Str("gold", gold.SourceLabel).
		Float64("usd_rate", snapshot.USDToLocal).
		Msg("Prices refreshed")

	return snapshot, reports, nil
}

func (a *Aggregator) resolveCrypto(ctx context.Context, usdRate float64) Resolution {
	res := a.resolver.Resolve(ctx, models.CategoryCrypto,
		withRate(a.sources.CryptoPrimary, usdRate),
		withRates(a.sources.CryptoBackups, usdRate)...)

	if a.sources.Missing != nil && len(a.sources.MissingAssets) > 0 {
		found := a.sources.Missing.FillMissing(ctx, res.Data, a.sources.MissingAssets, usdRate)
		if len(found) > 0 {
			a.log.Debug().Int("count", len(found)).Msg("Filled missing crypto assets")
			res.Data = res.Data.Overlay(found)
		}
	}
	return res
}

func (a *Aggregator) resolveGold(ctx context.Context, usdRate float64) Resolution {
	return a.resolver.Resolve(ctx, models.CategoryGold,
		withRate(a.sources.GoldPrimary, usdRate),
		withRates(a.sources.GoldBackups, usdRate)...)
}

func (a *Aggregator) keepPrevious(category models.Category, fresh, prev models.PriceMap) models.PriceMap {
	if len(fresh) > 0 {
		return fresh.Clone()
	}
	if len(prev) > 0 {
		a.log.Error().Str("category", string(category)).Msg("Keeping previous prices for failed category")
	}
	return prev.Clone()
}

// resolveUSDRate prefers the fresh fiat USD price, then the previous snapshot.
func resolveUSDRate(fiat models.PriceMap, prev *models.PriceSnapshot) float64 {
	if usd, ok := fiat.Get(models.SymbolUSD); ok {
		return usd
	}
	return previousRate(prev, func(s *models.PriceSnapshot) float64 { return s.USDToLocal }, DefaultUSDRate)
}

func previousRate(prev *models.PriceSnapshot, field func(*models.PriceSnapshot) float64, fallback float64) float64 {
	if prev != nil {
		if v := field(prev); v > 0 {
			return v
		}
	}
	return fallback
}

// aliasGold18 makes the canonical 18k symbol and every alias carry the same
// price. The canonical entry wins over aliases; among aliases the first listed
// wins. Returns 0 when none is present.
func aliasGold18(gold models.PriceMap) float64 {
	price, ok := gold.Get(models.SymbolGold18)
	if !ok {
		for _, alias := range models.Gold18Aliases {
			if price, ok = gold.Get(alias); ok {
				break
			}
		}
	}
	if !ok {
		return 0
	}
	gold.Set(models.SymbolGold18, price)
	for _, alias := range models.Gold18Aliases {
		gold.Set(alias, price)
	}
	return price
}

func withRate(f providers.Fetcher, usdRate float64) providers.Fetcher {
	if ra, ok := f.(providers.RateAware); ok {
		return ra.WithUSDRate(usdRate)
	}
	return f
}

func withRates(fs []providers.Fetcher, usdRate float64) []providers.Fetcher {
	out := make([]providers.Fetcher, len(fs))
	for i, f := range fs {
		out[i] = withRate(f, usdRate)
	}
	return out
}

func report(category models.Category, res Resolution) models.SourceReport {
	return models.SourceReport{
		Type:        category,
		SourceLabel: res.SourceLabel,
		Provider:    res.Provider,
		Count:       len(res.Data),
	}
}
