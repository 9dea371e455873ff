package models

// AssetSummary is the derived valuation of one symbol across all of its buys.
type AssetSummary struct {
	Symbol            string    `json:"symbol"`
	Name              string    `json:"name"`
	Type              AssetType `json:"type"`
	TotalQuantity     float64   `json:"total_quantity"`
	CurrentPriceLocal float64   `json:"current_price_local"`
	CurrentValueLocal float64   `json:"current_value_local"`
	CostBasisLocal    float64   `json:"cost_basis_local"`
	PnlLocal          float64   `json:"pnl_local"`
	PnlPercent        float64   `json:"pnl_percent"`
	AllocationPercent float64   `json:"allocation_percent"`
}

// PortfolioSummary is the top level aggregate. Assets are sorted by current
// value, descending, ties kept in first-seen order.
type PortfolioSummary struct {
	TotalValueLocal     float64        `json:"total_value_local"`
	TotalCostBasisLocal float64        `json:"total_cost_basis_local"`
	TotalPnlLocal       float64        `json:"total_pnl_local"`
	TotalPnlPercent     float64        `json:"total_pnl_percent"`
	Assets              []AssetSummary `json:"assets"`
}

// EmptySummary is the defined valuation of an empty ledger or a missing snapshot.
func EmptySummary() PortfolioSummary {
	return PortfolioSummary{Assets: []AssetSummary{}}
}
