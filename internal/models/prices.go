package models

import "time"

// PriceMap maps a canonical asset symbol to its unit price in toman.
//
// Only positive prices are meaningful; a missing key means "no price known".
// Merging two maps is always explicit (see Overlay) so precedence never depends
// on iteration order.
type PriceMap map[string]float64

// Get returns the price for symbol and whether a positive price is known.
func (m PriceMap) Get(symbol string) (float64, bool) {
	p, ok := m[symbol]
	return p, ok && p > 0
}

// Set stores a price, ignoring non-positive values.
func (m PriceMap) Set(symbol string, price float64) {
	if price > 0 {
		m[symbol] = price
	}
}

// Clone returns an independent copy; a nil map clones to an empty one.
func (m PriceMap) Clone() PriceMap {
	out := make(PriceMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Overlay returns a new map holding m with every entry of top written over it.
func (m PriceMap) Overlay(top PriceMap) PriceMap {
	out := m.Clone()
	for k, v := range top {
		out.Set(k, v)
	}
	return out
}

// PriceSnapshot is one immutable, timestamped set of resolved prices. A refresh
// supersedes it wholesale; it is never mutated after construction.
type PriceSnapshot struct {
	USDToLocal    float64   `json:"usd_to_local"`
	EURToLocal    float64   `json:"eur_to_local"`
	Gold18ToLocal float64   `json:"gold18_to_local"`
	FiatPrices    PriceMap  `json:"fiat_prices"`
	CryptoPrices  PriceMap  `json:"crypto_prices"`
	GoldPrices    PriceMap  `json:"gold_prices"`
	FetchedAt     time.Time `json:"fetched_at"`

	// IsDefault marks the hardcoded fallback. It is never persisted and does
	// not start the refresh cooldown.
	IsDefault bool `json:"is_default,omitempty"`
}

// Category is one of the three priced asset classes.
type Category string

const (
	CategoryFiat   Category = "fiat"
	CategoryCrypto Category = "crypto"
	CategoryGold   Category = "gold"
)

// SourceReport records which source actually served a category during a refresh.
type SourceReport struct {
	Type        Category `json:"type"`
	SourceLabel string   `json:"sourceLabel"`
	Provider    string   `json:"provider,omitempty"`
	Count       int      `json:"count"`
}

// RefreshResult is the payload of the refresh endpoint.
type RefreshResult struct {
	Success       bool           `json:"success"`
	Data          *PriceSnapshot `json:"data"`
	Sources       []SourceReport `json:"sources"`
	Skipped       bool           `json:"skipped"`
	NextAllowedAt *time.Time     `json:"nextAllowedAt,omitempty"`
	Message       string         `json:"message,omitempty"`
}
