package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/rs/zerolog"
)

// CoinGeckoAsset names a crypto asset by its CoinGecko id.
type CoinGeckoAsset struct {
	Symbol string
	ID     string
}

// FrequentlyMissing are assets the crypto primary page often omits.
var FrequentlyMissing = []CoinGeckoAsset{
	{Symbol: "TON", ID: "the-open-network"},
	{Symbol: "NOT", ID: "notcoin"},
	{Symbol: "TRX", ID: "tron"},
}

// CoinGeckoClient looks up single asset USD prices.
type CoinGeckoClient struct {
	baseURL string
	delay   time.Duration
	client  *http.Client
	log     zerolog.Logger
}

// NewCoinGeckoClient creates a client. delay is slept between consecutive
// lookups to stay under the public API's per-minute quota.
func NewCoinGeckoClient(baseURL string, delay time.Duration, client *http.Client, log zerolog.Logger) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: baseURL,
		delay:   delay,
		client:  client,
		log:     log.With().Str("provider", "coingecko").Logger(),
	}
}

// GetUSDPrice returns the current USD price of the asset with the given id.
func (c *CoinGeckoClient) GetUSDPrice(ctx context.Context, id string) (float64, error) {
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, url.QueryEscape(id))

	body, err := get(ctx, c.client, endpoint)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	var result map[string]map[string]interface{}
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode coingecko %s: %w", id, err)
	}

	tokenData, exists := result[id]
	if !exists {
		return 0, fmt.Errorf("coingecko %s: %w", id, ErrEmptyResponse)
	}
	price := getFloat(tokenData, "usd")
	if price <= 0 {
		return 0, fmt.Errorf("coingecko %s: %w", id, ErrEmptyResponse)
	}
	return price, nil
}

// FillMissing looks up every asset absent from present and returns their toman
// prices converted at usdRate. Lookups run one after another with the
// configured delay between them; failures are logged and skipped.
func (c *CoinGeckoClient) FillMissing(ctx context.Context, present models.PriceMap, assets []CoinGeckoAsset, usdRate float64) models.PriceMap {
	found := models.PriceMap{}
	if usdRate <= 0 {
		return found
	}

	first := true
	for _, asset := range assets {
		if _, ok := present.Get(asset.Symbol); ok {
			continue
		}
		if !first && c.delay > 0 {
			select {
			case <-ctx.Done():
				return found
			case <-time.After(c.delay):
			}
		}
		first = false

		usd, err := c.GetUSDPrice(ctx, asset.ID)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", asset.Symbol).Msg("Single asset lookup failed")
			continue
		}
		found.Set(asset.Symbol, usd*usdRate)
	}
	return found
}

// getFloat extracts a float64 from a decoded JSON object.
func getFloat(data map[string]interface{}, key string) float64 {
	if val, exists := data[key]; exists {
		switch v := val.(type) {
		case float64:
			return v
		case string:
			return Normalize(v)
		}
	}
	return 0
}
