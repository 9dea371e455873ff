package services

import (
	"sort"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/shopspring/decimal"
)

// PriceLookup merges a snapshot into one symbol -> price map. The 18k scalar is
// written first under its canonical symbol, then fiat, crypto and gold maps are
// overlaid in that order, so the gold map wins any conflict on GOLD18.
func PriceLookup(snapshot *models.PriceSnapshot) models.PriceMap {
	lookup := models.PriceMap{}
	if snapshot == nil {
		return lookup
	}
	lookup.Set(models.SymbolGold18, snapshot.Gold18ToLocal)
	return lookup.
		Overlay(snapshot.FiatPrices).
		Overlay(snapshot.CryptoPrices).
		Overlay(snapshot.GoldPrices)
}

// CostLocal is what a transaction cost in toman, fees included. USD purchases
// are converted at the snapshot's current USD rate, not the rate on the
// purchase date.
func CostLocal(tx models.Transaction, usdRate float64) float64 {
	price := decimal.NewFromFloat(tx.BuyPricePerUnit)
	if tx.BuyCurrency == models.CurrencyUSD {
		price = price.Mul(decimal.NewFromFloat(usdRate))
	}
	return decimal.NewFromFloat(tx.Quantity).
		Mul(price).
		Add(decimal.NewFromFloat(tx.FeesToman)).
		InexactFloat64()
}

// ComputeSummary values a ledger against a snapshot. It is pure: the same
// inputs in the same order always give the same summary.
func ComputeSummary(transactions []models.Transaction, snapshot *models.PriceSnapshot) models.PortfolioSummary {
	summary := models.EmptySummary()
	if snapshot == nil || len(transactions) == 0 {
		return summary
	}

	lookup := PriceLookup(snapshot)

	index := map[string]int{}
	assets := []models.AssetSummary{}
	for _, tx := range transactions {
		i, seen := index[tx.AssetSymbol]
		if !seen {
			i = len(assets)
			index[tx.AssetSymbol] = i
			name, assetType := describeAsset(tx.AssetSymbol, snapshot)
			assets = append(assets, models.AssetSummary{
				Symbol: tx.AssetSymbol,
				Name:   name,
				Type:   assetType,
			})
		}
		assets[i].TotalQuantity += tx.Quantity
		assets[i].CostBasisLocal += CostLocal(tx, snapshot.USDToLocal)
	}

	for i := range assets {
		a := &assets[i]
		a.CurrentPriceLocal, _ = lookup.Get(a.Symbol)
		a.CurrentValueLocal = a.TotalQuantity * a.CurrentPriceLocal
		a.PnlLocal = a.CurrentValueLocal - a.CostBasisLocal
		a.PnlPercent = percent(a.PnlLocal, a.CostBasisLocal)

		summary.TotalValueLocal += a.CurrentValueLocal
		summary.TotalCostBasisLocal += a.CostBasisLocal
		summary.TotalPnlLocal += a.PnlLocal
	}
	summary.TotalPnlPercent = percent(summary.TotalPnlLocal, summary.TotalCostBasisLocal)

	for i := range assets {
		assets[i].AllocationPercent = percent(assets[i].CurrentValueLocal, summary.TotalValueLocal)
	}

	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].CurrentValueLocal > assets[j].CurrentValueLocal
	})
	summary.Assets = assets
	return summary
}

// DescribeTransaction values a single buy against the snapshot.
func DescribeTransaction(tx models.Transaction, snapshot *models.PriceSnapshot) models.TransactionDetails {
	details := models.TransactionDetails{Transaction: tx}

	usdRate := 0.0
	if snapshot != nil {
		usdRate = snapshot.USDToLocal
	}
	details.CostLocal = CostLocal(tx, usdRate)
	details.CurrentPrice, _ = PriceLookup(snapshot).Get(tx.AssetSymbol)
	details.CurrentValue = tx.Quantity * details.CurrentPrice
	details.GainLoss = details.CurrentValue - details.CostLocal
	details.GainLossPercent = percent(details.GainLoss, details.CostLocal)
	return details
}

// describeAsset returns catalog info, or infers the type from whichever price
// map carries the symbol.
func describeAsset(symbol string, snapshot *models.PriceSnapshot) (string, models.AssetType) {
	if info, ok := models.LookupAsset(symbol); ok {
		return info.Name, info.Type
	}
	if models.IsGold18(symbol) {
		return symbol, models.AssetGold
	}
	if _, ok := snapshot.GoldPrices.Get(symbol); ok {
		return symbol, models.AssetGold
	}
	if _, ok := snapshot.FiatPrices.Get(symbol); ok {
		return symbol, models.AssetFiat
	}
	return symbol, models.AssetCrypto
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// TopMovers picks the holdings with the highest and lowest PnL percent. Ties
// go to the asset listed first in the summary.
func TopMovers(summary models.PortfolioSummary) models.Performance {
	var perf models.Performance
	for _, a := range summary.Assets {
		detail := &models.PerformanceDetail{Symbol: a.Symbol, PnlPercent: a.PnlPercent, PnlLocal: a.PnlLocal}
		if perf.TopGainer == nil || a.PnlPercent > perf.TopGainer.PnlPercent {
			perf.TopGainer = detail
		}
		if perf.TopLoser == nil || a.PnlPercent < perf.TopLoser.PnlPercent {
			perf.TopLoser = detail
		}
	}
	return perf
}
