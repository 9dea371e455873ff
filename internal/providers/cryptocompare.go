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

// DefaultCryptoCompareSymbols are requested from the multi-price endpoint.
var DefaultCryptoCompareSymbols = []string{"BTC", "ETH", "USDT", "BNB", "SOL", "XRP", "TON", "DOGE", "TRX", "ADA"}

// CryptoCompareFetcher gets USD prices for many symbols in one call and
// converts them with the injected USD rate.
type CryptoCompareFetcher struct {
	baseURL string
	apiKey  string
	symbols []string
	usdRate float64
	client  *http.Client
	log     zerolog.Logger
}

func NewCryptoCompareFetcher(baseURL, apiKey string, symbols []string, client *http.Client, log zerolog.Logger) *CryptoCompareFetcher {
	return &CryptoCompareFetcher{
		baseURL: baseURL,
		apiKey:  apiKey,
		symbols: symbols,
		client:  client,
		log:     log.With().Str("provider", "cryptocompare").Logger(),
	}
}

func (f *CryptoCompareFetcher) Name() string { return "cryptocompare" }

func (f *CryptoCompareFetcher) WithUSDRate(rate float64) Fetcher {
	cp := *f
	cp.usdRate = rate
	return &cp
}

func (f *CryptoCompareFetcher) Fetch(ctx context.Context) (models.PriceMap, error) {
	if len(f.symbols) == 0 {
		return nil, fmt.Errorf("cryptocompare: no symbols configured")
	}
	if f.usdRate <= 0 {
		return nil, fmt.Errorf("cryptocompare: no USD rate")
	}

	q := url.Values{}
	q.Set("fsyms", strings.Join(f.symbols, ","))
	q.Set("tsyms", "USD")
	if f.apiKey != "" {
		q.Set("api_key", f.apiKey)
	}
	endpoint := f.baseURL + "/data/pricemulti?" + q.Encode()

	body, err := get(ctx, f.client, endpoint)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var result map[string]map[string]float64
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode cryptocompare: %w", err)
	}

	prices := models.PriceMap{}
	for ticker, data := range result {
		if usd, ok := data["USD"]; ok {
			prices.Set(strings.ToUpper(ticker), usd*f.usdRate)
		}
	}

	f.log.Debug().Int("count", len(prices)).Msg("Fetched multi prices")
	return prices, nil
}
