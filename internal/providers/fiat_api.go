package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/rs/zerolog"
)

// fiatAPICodes maps the secondary API's item keys to canonical symbols.
var fiatAPICodes = map[string]string{
	"usd_sell": "USD", "eur": "EUR", "gbp": "GBP", "aed_sell": "AED", "try": "TRY",
	"cny": "CNY", "cad": "CAD", "aud": "AUD", "chf": "CHF", "iqd": "IQD",
}

// FiatAPIFetcher reads the secondary JSON rates API. Values are toman strings,
// possibly with separators.
type FiatAPIFetcher struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

func NewFiatAPIFetcher(baseURL, apiKey string, client *http.Client, log zerolog.Logger) *FiatAPIFetcher {
	return &FiatAPIFetcher{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
		log:     log.With().Str("provider", "fiat-api").Logger(),
	}
}

func (f *FiatAPIFetcher) Name() string { return "fiat-api" }

type fiatAPIItem struct {
	Value json.RawMessage `json:"value"`
}

func (f *FiatAPIFetcher) Fetch(ctx context.Context) (models.PriceMap, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid fiat api url: %w", err)
	}
	if f.apiKey != "" {
		q := u.Query()
		q.Set("api_key", f.apiKey)
		u.RawQuery = q.Encode()
	}

	body, err := get(ctx, f.client, u.String())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var result map[string]fiatAPIItem
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode fiat api: %w", err)
	}

	prices := models.PriceMap{}
	for key, item := range result {
		symbol, ok := fiatAPICodes[strings.ToLower(key)]
		if !ok {
			continue
		}
		// value arrives either as a JSON string or a bare number
		raw := strings.Trim(string(item.Value), `"`)
		if v, ok := ParseLocalized(raw); ok {
			prices.Set(symbol, v)
		}
	}

	f.log.Debug().Int("count", len(prices)).Msg("Fetched fiat api rates")
	return prices, nil
}
