package models

import "time"

// PortfolioHistory is one day of a user's valuation. MaxValue and MinValue track
// the extremes observed during that day.
type PortfolioHistory struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Date             time.Time `json:"date"`
	TotalValue       float64   `json:"total_value"`
	TotalInvested    float64   `json:"total_invested"`
	Profit           float64   `json:"profit"`
	ProfitPercentage float64   `json:"profit_percentage"`
	MaxValue         float64   `json:"max_value"`
	MinValue         float64   `json:"min_value"`
}

// PortfolioChartData is the history reshaped for a line chart.
type PortfolioChartData struct {
	Labels          []string  `json:"labels"` // dates, YYYY-MM-DD
	Values          []float64 `json:"values"`
	High            float64   `json:"high"`
	Low             float64   `json:"low"`
	TrendPercentage float64   `json:"trend_percentage"` // first to last value
}
