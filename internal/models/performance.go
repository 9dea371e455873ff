package models

// Performance names the best and worst performing holdings of a portfolio.
// Both are nil for an empty portfolio.
type Performance struct {
	TopGainer *PerformanceDetail `json:"top_gainer"`
	TopLoser  *PerformanceDetail `json:"top_loser"`
}

type PerformanceDetail struct {
	Symbol     string  `json:"symbol"`
	PnlPercent float64 `json:"pnl_percent"`
	PnlLocal   float64 `json:"pnl_local"`
}
