package models

import "time"

// Currency is the unit a purchase price was paid in.
type Currency string

const (
	CurrencyToman Currency = "TOMAN"
	CurrencyUSD   Currency = "USD"
)

// Valid reports whether c is one of the supported purchase currencies.
func (c Currency) Valid() bool {
	return c == CurrencyToman || c == CurrencyUSD
}

// Transaction is one buy in a user's ledger. Repeated buys of the same asset are
// separate rows and are only aggregated at valuation time.
type Transaction struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	AssetSymbol     string    `json:"asset_symbol" binding:"required"`
	Quantity        float64   `json:"quantity" binding:"required,gt=0"`
	BuyDateTime     time.Time `json:"buy_date_time"`
	BuyPricePerUnit float64   `json:"buy_price_per_unit" binding:"required,gt=0"`
	BuyCurrency     Currency  `json:"buy_currency"`
	FeesToman       float64   `json:"fees_toman" binding:"gte=0"`
	Note            string    `json:"note,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
