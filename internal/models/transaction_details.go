package models

// TransactionDetails is a single buy valued against the current snapshot.
type TransactionDetails struct {
	Transaction     Transaction `json:"transaction"`
	CostLocal       float64     `json:"cost_local"`        // Quantity * price (converted) + fees
	CurrentPrice    float64     `json:"current_price"`     // 0 when the snapshot has no price
	CurrentValue    float64     `json:"current_value"`     // Quantity * CurrentPrice
	GainLoss        float64     `json:"gain_loss"`         // CurrentValue - CostLocal
	GainLossPercent float64     `json:"gain_loss_percent"` // (GainLoss / CostLocal) * 100
}
