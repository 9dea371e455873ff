package services

import (
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
)

// DefaultSnapshot is served when a refresh fails outright and nothing better is
// known. Values are rough toman rates, good enough to keep valuation rendering.
func DefaultSnapshot(now time.Time) *models.PriceSnapshot {
	return &models.PriceSnapshot{
		USDToLocal:    DefaultUSDRate,
		EURToLocal:    DefaultEURRate,
		Gold18ToLocal: DefaultGold18Rate,
		FiatPrices: models.PriceMap{
			models.SymbolUSD: DefaultUSDRate,
			models.SymbolEUR: DefaultEURRate,
		},
		CryptoPrices: models.PriceMap{
			"USDT": DefaultUSDRate,
		},
		GoldPrices: models.PriceMap{
			models.SymbolGold18: DefaultGold18Rate,
		},
		FetchedAt: now,
		IsDefault: true,
	}
}
